package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"shop-catalog/internal/catalog"

	"github.com/urfave/cli/v2"
)

const shellHelp = `commands:
  list                     show products
  categories               show categories
  refresh                  reload products and categories
  create                   create a product (prompts for fields, - clears one)
  edit ID                  start editing a product
  name TEXT                set the draft name
  price TEXT               set the draft price
  cats [ID ...]            set the draft categories
  draft                    show the draft
  save                     save the draft
  cancel                   discard the draft
  delete ID                delete a product
  help                     show this help
  quit                     leave the shell
`

func (a *app) shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "interactive session over one catalog snapshot",
		Action: func(c *cli.Context) error {
			store := a.newStore()
			defer store.Close()

			// Failures are already reported; the shell still starts.
			_ = store.Load(c.Context)
			fmt.Fprintf(a.out, "%d products, %d categories. Type help for commands.\n",
				len(store.Snapshot().Products), len(store.Snapshot().Categories))

			return a.runShell(c.Context, store)
		},
	}
}

// runShell reads commands until quit or end of input.
func (a *app) runShell(ctx context.Context, store *catalog.Store) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(a.out, "catalog> ")
		line, err := a.readLine()
		if err == io.EOF {
			fmt.Fprintln(a.out)
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		a.shellExec(ctx, store, cmd, rest)
	}
}

// shellExec runs one shell command. Store failures are reported by the
// notifier, so errors are not printed again here.
func (a *app) shellExec(ctx context.Context, store *catalog.Store, cmd, rest string) {
	switch cmd {
	case "help":
		fmt.Fprint(a.out, shellHelp)

	case "list":
		renderProducts(a.out, store.Snapshot().Products)

	case "categories":
		renderCategories(a.out, store.Snapshot().Categories)

	case "refresh":
		if store.Load(ctx) == nil {
			fmt.Fprintf(a.out, "%d products\n", len(store.Snapshot().Products))
		}

	case "create":
		a.shellCreate(ctx, store)

	case "edit":
		id, ok := a.shellID(rest)
		if !ok {
			return
		}
		if draft, err := store.StartEdit(id); err == nil {
			a.printDraft(&draft)
		}

	case "name", "price", "cats":
		a.shellSetField(store, cmd, rest)

	case "draft":
		a.printDraft(store.Snapshot().Draft)

	case "save":
		if updated, err := store.SaveEdit(ctx); err == nil {
			fmt.Fprintln(a.out, formatProduct(*updated))
		}

	case "cancel":
		if store.Snapshot().Draft == nil {
			fmt.Fprintln(a.out, "no draft")
			return
		}
		store.CancelEdit()
		fmt.Fprintln(a.out, "draft discarded")

	case "delete":
		id, ok := a.shellID(rest)
		if !ok {
			return
		}
		store.DeleteProduct(ctx, id, a.confirmer(false))

	default:
		fmt.Fprintf(a.out, "unknown command %q, type help\n", cmd)
	}
}

// shellCreate prompts for each field. An empty answer keeps the value left
// over from a previous failed attempt and "-" clears it.
func (a *app) shellCreate(ctx context.Context, store *catalog.Store) {
	form := store.Pending()

	name, ok := a.prompt("name", form.Name)
	if !ok {
		return
	}
	price, ok := a.prompt("price", form.PriceText)
	if !ok {
		return
	}
	cats, ok := a.prompt("categories", joinIDs(form.CategoryIDs))
	if !ok {
		return
	}

	ids, err := parseIDList(cats)
	if err != nil {
		store.SetPending(catalog.Form{Name: name, PriceText: price})
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return
	}

	if created, err := store.CreateProduct(ctx, name, price, ids); err == nil {
		fmt.Fprintln(a.out, formatProduct(*created))
	}
}

func (a *app) shellSetField(store *catalog.Store, field, value string) {
	draft := store.Snapshot().Draft
	if draft == nil {
		fmt.Fprintln(a.errOut, "error: "+catalog.Describe(catalog.ErrNoDraft))
		return
	}

	form := draft.Form
	switch field {
	case "name":
		form.Name = value
	case "price":
		form.PriceText = value
	case "cats":
		ids, err := parseIDList(value)
		if err != nil {
			fmt.Fprintf(a.errOut, "error: %v\n", err)
			return
		}
		form.CategoryIDs = ids
	}

	if store.UpdateDraft(form) == nil {
		a.printDraft(store.Snapshot().Draft)
	}
}

func (a *app) shellID(arg string) (int64, bool) {
	id, err := parseProductID(arg)
	if err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return 0, false
	}
	return id, true
}

// clearAnswer is the prompt answer that empties a field.
const clearAnswer = "-"

// prompt asks for a value, returning current when the answer is empty and
// an empty string when the answer is clearAnswer.
func (a *app) prompt(label, current string) (string, bool) {
	if current != "" {
		fmt.Fprintf(a.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(a.out, "%s: ", label)
	}

	answer, err := a.readLine()
	if err != nil {
		fmt.Fprintln(a.out)
		return "", false
	}
	switch strings.TrimSpace(answer) {
	case "":
		return current, true
	case clearAnswer:
		return "", true
	}
	return answer, true
}

func (a *app) printDraft(d *catalog.Draft) {
	if d == nil {
		fmt.Fprintln(a.out, "no draft")
		return
	}
	fmt.Fprintf(a.out, "editing #%d: name=%q price=%q categories=[%s]\n",
		d.ProductID, d.Form.Name, d.Form.PriceText, joinIDs(d.Form.CategoryIDs))
}

// parseIDList accepts IDs separated by commas or spaces.
func parseIDList(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid category ID %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
