package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"shop-catalog/internal/model"
)

func renderProducts(w io.Writer, products []model.Product) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORIES")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), categoryNames(p.Categories))
	}
	return tw.Flush()
}

func renderProduct(w io.Writer, p model.Product) error {
	return renderProducts(w, []model.Product{p})
}

func renderCategories(w io.Writer, categories []model.Category) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range categories {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

func categoryNames(categories []model.Category) string {
	if len(categories) == 0 {
		return "-"
	}
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
