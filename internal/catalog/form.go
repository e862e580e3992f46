package catalog

import (
	"fmt"
	"slices"
	"strings"

	"shop-catalog/internal/model"
)

// ValidationError reports a form field rejected before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Form holds editable product fields as the user typed them.
type Form struct {
	Name        string
	PriceText   string
	CategoryIDs []int64
}

// FormFromProduct copies a product's editable fields.
func FormFromProduct(p model.Product) Form {
	return Form{
		Name:        p.Name,
		PriceText:   p.Price.String(),
		CategoryIDs: p.CategoryIDs(),
	}
}

// Input validates the form and builds the write payload. The name must not
// be blank and the price must be a non-negative number the backend can store
// exactly. Duplicate category IDs are dropped.
func (f Form) Input() (model.ProductInput, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return model.ProductInput{}, &ValidationError{Field: "name", Reason: "must not be blank"}
	}

	price, err := model.ParsePrice(f.PriceText)
	if err != nil {
		return model.ProductInput{}, &ValidationError{Field: "price", Reason: "must be a number"}
	}
	if err := price.Check(); err != nil {
		return model.ProductInput{}, &ValidationError{Field: "price", Reason: priceReason(err)}
	}

	return model.NewProductInput(name, price, f.CategoryIDs), nil
}

func priceReason(err error) string {
	switch err {
	case model.ErrPriceTooLarge:
		return "must be less than 10000000000"
	case model.ErrPriceTooPrecise:
		return "must have at most 2 decimal places"
	default:
		return "must not be negative"
	}
}

// equal reports whether f and o hold the same field values.
func (f Form) equal(o Form) bool {
	return f.Name == o.Name && f.PriceText == o.PriceText && slices.Equal(f.CategoryIDs, o.CategoryIDs)
}

// clone returns a copy that shares no memory with f.
func (f Form) clone() Form {
	if f.CategoryIDs != nil {
		f.CategoryIDs = append([]int64(nil), f.CategoryIDs...)
	}
	return f
}

// Draft is the in-progress edit of an existing product.
type Draft struct {
	ProductID int64
	Form      Form
}
