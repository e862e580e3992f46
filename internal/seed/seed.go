// Package seed loads catalog seed data from gzipped JSON-lines files and
// writes it into the catalog store.
//
// Each line is one record:
//
//	{"type":"category","name":"Tools"}
//	{"type":"product","name":"Hammer","price":12.50,"categories":["Tools"]}
package seed

import (
	"context"

	"shop-catalog/internal/model"
)

// Record types.
const (
	RecordCategory = "category"
	RecordProduct  = "product"
)

// Record is a single line of a seed file.
type Record struct {
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Price      *model.Price `json:"price,omitempty"`
	Categories []string     `json:"categories,omitempty"`
}

// ProductSeed is a product whose categories are referenced by name.
type ProductSeed struct {
	Name       string
	Price      model.Price
	Categories []string
}

// Catalog is the decoded content of one or more seed files.
type Catalog struct {
	// Categories holds every category name, declared or referenced, in
	// first-seen order.
	Categories []string
	Products   []ProductSeed

	names *NameSet
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Categories: []string{},
		Products:   []ProductSeed{},
		names:      NewNameSet(16),
	}
}

// AddCategory records a category name once.
func (c *Catalog) AddCategory(name string) {
	if c.names == nil {
		c.names = NewNameSet(len(c.Categories))
		for _, existing := range c.Categories {
			c.names.Add(existing)
		}
	}
	if c.names.Add(name) {
		c.Categories = append(c.Categories, name)
	}
}

// AddProduct records a product and any categories it references.
func (c *Catalog) AddProduct(p ProductSeed) {
	for _, name := range p.Categories {
		c.AddCategory(name)
	}
	c.Products = append(c.Products, p)
}

// Merge appends other's categories and products.
func (c *Catalog) Merge(other *Catalog) {
	for _, name := range other.Categories {
		c.AddCategory(name)
	}
	c.Products = append(c.Products, other.Products...)
}

// Loader defines the interface for loading seed files.
type Loader interface {
	// Load reads a gzipped seed file and returns its catalog.
	Load(ctx context.Context, path string) (*Catalog, error)
}
