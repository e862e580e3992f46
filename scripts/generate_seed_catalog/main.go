package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"shop-catalog/internal/model"
	"shop-catalog/internal/seed"
)

// generateSeedCatalog writes sample seed files for local development.
// catalog.jsonl.gz holds the base catalog; garden.jsonl.gz adds a second
// file that shares the "Tools" category with the first.
func main() {
	dataDir := "data/seed"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]seed.ProductSeed{
		"catalog.jsonl.gz": {
			{Name: "Claw Hammer", Price: model.MustPrice("12.50"), Categories: []string{"Tools"}},
			{Name: "Screwdriver Set", Price: model.MustPrice("19.99"), Categories: []string{"Tools"}},
			{Name: "LED Desk Lamp", Price: model.MustPrice("34.00"), Categories: []string{"Home", "Lighting"}},
			{Name: "Extension Cord", Price: model.MustPrice("9.95"), Categories: []string{"Home", "Electrical"}},
			{Name: "Gift Card", Price: model.MustPrice("0"), Categories: nil},
		},
		"garden.jsonl.gz": {
			{Name: "Garden Rake", Price: model.MustPrice("8.00"), Categories: []string{"Garden", "Tools"}},
			{Name: "Watering Can", Price: model.MustPrice("14.25"), Categories: []string{"Garden"}},
			{Name: "Pruning Shears", Price: model.MustPrice("22.10"), Categories: []string{"Garden", "Tools"}},
		},
	}

	for filename, products := range files {
		catalog := seed.NewCatalog()
		for _, p := range products {
			catalog.AddProduct(p)
		}

		path := filepath.Join(dataDir, filename)
		if err := writeCatalog(path, catalog); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}

		fmt.Printf("Created %s with %d categories and %d products\n", path, len(catalog.Categories), len(catalog.Products))
	}

	fmt.Println("\nSeed with: SEED_ENABLED=true SEED_FILES=data/seed/catalog.jsonl.gz,data/seed/garden.jsonl.gz")
}

func writeCatalog(path string, catalog *seed.Catalog) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := seed.Encode(file, catalog); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
