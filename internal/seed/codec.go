package seed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/pgzip"
)

// Decode reads gzipped JSON-lines records from r. Blank lines are skipped.
func Decode(ctx context.Context, r io.Reader) (*Catalog, error) {
	gzipReader, err := pgzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	catalog := NewCatalog()

	scanner := bufio.NewScanner(gzipReader)
	// Set larger buffer for long product lines
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		// Check context cancellation periodically
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid record: %w", lineNo, err)
		}

		if err := addRecord(catalog, rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading seed data: %w", err)
	}

	return catalog, nil
}

func addRecord(catalog *Catalog, rec Record) error {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return fmt.Errorf("%s record has no name", rec.Type)
	}

	switch rec.Type {
	case RecordCategory:
		catalog.AddCategory(name)
	case RecordProduct:
		if rec.Price == nil {
			return fmt.Errorf("product %q has no price", name)
		}
		if err := rec.Price.Check(); err != nil {
			return fmt.Errorf("product %q: %w", name, err)
		}

		categories := make([]string, 0, len(rec.Categories))
		for _, c := range rec.Categories {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}

		catalog.AddProduct(ProductSeed{Name: name, Price: *rec.Price, Categories: categories})
	default:
		return fmt.Errorf("unknown record type %q", rec.Type)
	}

	return nil
}

// Encode writes catalog to w as gzipped JSON lines: categories first, then
// products.
func Encode(w io.Writer, catalog *Catalog) error {
	gzipWriter := pgzip.NewWriter(w)
	encoder := json.NewEncoder(gzipWriter)

	for _, name := range catalog.Categories {
		if err := encoder.Encode(Record{Type: RecordCategory, Name: name}); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode category %q: %w", name, err)
		}
	}

	for _, p := range catalog.Products {
		price := p.Price
		rec := Record{Type: RecordProduct, Name: p.Name, Price: &price, Categories: p.Categories}
		if err := encoder.Encode(rec); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode product %q: %w", p.Name, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	return nil
}
