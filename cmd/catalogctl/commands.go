package main

import (
	"context"
	"fmt"
	"strconv"

	"shop-catalog/internal/catalog"
	"shop-catalog/internal/model"
	"shop-catalog/internal/seed"

	"github.com/go-faster/errors"
	"github.com/urfave/cli/v2"
)

// importBatchSize matches the largest request the bulk endpoint accepts.
const importBatchSize = 500

func (a *app) listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list all products",
		Action: func(c *cli.Context) error {
			store := a.newStore()
			defer store.Close()

			if err := store.RefreshProducts(c.Context); err != nil {
				return errReported
			}
			return renderProducts(a.out, store.Snapshot().Products)
		},
	}
}

func (a *app) categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "list all categories",
		Action: func(c *cli.Context) error {
			store := a.newStore()
			defer store.Close()

			if err := store.RefreshCategories(c.Context); err != nil {
				return errReported
			}
			return renderCategories(a.out, store.Snapshot().Categories)
		},
	}
}

func (a *app) createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create a product",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "price", Required: true},
			&cli.Int64SliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "category ID, repeatable"},
		},
		Action: func(c *cli.Context) error {
			store := a.newStore()
			defer store.Close()

			created, err := store.CreateProduct(c.Context, c.String("name"), c.String("price"), c.Int64Slice("category"))
			if err != nil {
				return errReported
			}
			return renderProduct(a.out, *created)
		},
	}
}

func (a *app) editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "change a product; fields not given keep their value",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "price"},
			&cli.Int64SliceFlag{Name: "category", Aliases: []string{"c"}, Usage: "category ID, repeatable; replaces the current set"},
			&cli.BoolFlag{Name: "no-categories", Usage: "remove all categories"},
		},
		Action: func(c *cli.Context) error {
			id, err := productIDArg(c)
			if err != nil {
				return err
			}

			store := a.newStore()
			defer store.Close()

			if err := store.RefreshProducts(c.Context); err != nil {
				return errReported
			}
			draft, err := store.StartEdit(id)
			if err != nil {
				return errReported
			}

			form := draft.Form
			if c.IsSet("name") {
				form.Name = c.String("name")
			}
			if c.IsSet("price") {
				form.PriceText = c.String("price")
			}
			switch {
			case c.Bool("no-categories"):
				form.CategoryIDs = nil
			case c.IsSet("category"):
				form.CategoryIDs = c.Int64Slice("category")
			}
			if err := store.UpdateDraft(form); err != nil {
				return errReported
			}

			updated, err := store.SaveEdit(c.Context)
			if err != nil {
				return errReported
			}
			return renderProduct(a.out, *updated)
		},
	}
}

func (a *app) deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a product after confirmation",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
		},
		Action: func(c *cli.Context) error {
			id, err := productIDArg(c)
			if err != nil {
				return err
			}

			store := a.newStore()
			defer store.Close()

			// Loaded so the prompt can show the product name.
			if err := store.RefreshProducts(c.Context); err != nil {
				return errReported
			}

			err = store.DeleteProduct(c.Context, id, a.confirmer(c.Bool("yes")))
			switch {
			case errors.Is(err, catalog.ErrNotConfirmed):
				return nil
			case err != nil:
				return errReported
			}
			return nil
		},
	}
}

func (a *app) importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "create the products of a gzipped JSON-lines seed file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "resolve categories and report without creating anything"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("import needs exactly one FILE argument", 2)
			}

			n, err := a.importFile(c.Context, c.Args().First(), c.Bool("dry-run"))
			if err != nil {
				return err
			}

			if c.Bool("dry-run") {
				fmt.Fprintf(a.out, "%d products ready to import\n", n)
				return nil
			}
			fmt.Fprintf(a.out, "imported %d products\n", n)
			return nil
		},
	}
}

// importFile loads path and creates its products in batches. Categories are
// resolved by name against the server; unknown names fail the import before
// anything is created.
func (a *app) importFile(ctx context.Context, path string, dryRun bool) (int, error) {
	loaded, err := seed.NewFileLoader(a.logger).Load(ctx, path)
	if err != nil {
		return 0, err
	}

	listCtx, cancel := context.WithTimeout(ctx, a.timeout())
	categories, err := a.api.ListCategories(listCtx)
	cancel()
	if err != nil {
		return 0, errors.Wrap(err, "list categories")
	}

	ids := make(map[string]int64, len(categories))
	for _, category := range categories {
		ids[category.Name] = category.ID
	}

	inputs, err := seed.ProductInputs(loaded, ids)
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(inputs), nil
	}

	created := 0
	for start := 0; start < len(inputs); start += importBatchSize {
		end := min(start+importBatchSize, len(inputs))

		batchCtx, cancel := context.WithTimeout(ctx, a.timeout())
		products, err := a.api.CreateProducts(batchCtx, inputs[start:end])
		cancel()
		if err != nil {
			return created, errors.Wrapf(err, "create products %d-%d (%d already created)", start+1, end, created)
		}
		created += len(products)

		a.logger.Debug().Int("batch_start", start).Int("created", len(products)).Msg("import batch done")
	}

	return created, nil
}

func productIDArg(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit(fmt.Sprintf("%s needs exactly one product ID", c.Command.Name), 2)
	}
	return parseProductID(c.Args().First())
}

func parseProductID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid product ID %q", s), 2)
	}
	return id, nil
}

// formatProduct is the one-line form used by the shell and confirmations.
func formatProduct(p model.Product) string {
	return fmt.Sprintf("#%d %s %s", p.ID, p.Name, p.Price.StringFixed(2))
}
