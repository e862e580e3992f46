package model

import (
	"strings"
)

// Category represents a product category. Clients reference categories by
// ID only; names are resolved by the backend.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Product represents a product in the catalogue together with its categories.
type Product struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Price      Price      `json:"price" db:"price"`
	Categories []Category `json:"categories"`
}

// CategoryIDs returns the IDs of the product's categories in order.
func (p Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// CategoryRef references an existing category in a write request.
type CategoryRef struct {
	ID int64 `json:"id"`
}

// ProductInput represents the request payload for creating or updating a product.
type ProductInput struct {
	Name       string        `json:"name"`
	Price      Price         `json:"price"`
	Categories []CategoryRef `json:"categories"`
}

// NewProductInput builds a write payload. Duplicate category IDs are dropped,
// keeping the first occurrence.
func NewProductInput(name string, price Price, categoryIDs []int64) ProductInput {
	return ProductInput{
		Name:       name,
		Price:      price,
		Categories: RefsFromIDs(UniqueIDs(categoryIDs)),
	}
}

// CategoryIDs returns the referenced category IDs in order.
func (in ProductInput) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(in.Categories))
	for _, c := range in.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// Validate checks the fields the backend requires on every write.
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	return in.Price.Check()
}

// RefsFromIDs converts category IDs into write references. The result is
// never nil so it encodes as an empty JSON array.
func RefsFromIDs(ids []int64) []CategoryRef {
	refs := make([]CategoryRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, CategoryRef{ID: id})
	}
	return refs
}

// UniqueIDs returns ids with duplicates removed, preserving first-occurrence order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
