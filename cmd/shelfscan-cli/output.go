package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/use-agent/shelfscan/models"
	"github.com/use-agent/shelfscan/scraper"
)

type searchEngine interface {
	Search(ctx context.Context, query string, maxPages int) ([]models.Product, models.SearchStats, error)
}

type describeEngine interface {
	Describe(ctx context.Context, productURL, format string) (string, error)
}

// errNoDescription marks a describe run whose page could not be read.
var errNoDescription = errors.New("product page could not be read")

func runSearch(ctx context.Context, eng searchEngine, w io.Writer, query string, pages int, format string) error {
	switch format {
	case "json", "csv", "text":
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	products, stats, err := eng.Search(ctx, query, pages)
	if err != nil {
		return err
	}
	slog.Info("search finished",
		"query", query,
		"products", len(products),
		"pages", stats.PagesFetched,
		"stopReason", stats.StopReason,
		"containersSeen", stats.Extraction.ContainersSeen,
	)

	switch format {
	case "csv":
		return writeCSV(w, products)
	case "text":
		return writeText(w, products)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}
}

func writeCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Price", "Image", "Link"}); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write([]string{p.Title, p.Price, p.ImageURL, p.Link}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, products []models.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found")
		return err
	}
	for i, p := range products {
		if _, err := fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n", i+1, p.Title, p.Price, p.ImageURL); err != nil {
			return err
		}
		if p.Link != "" {
			if _, err := fmt.Fprintf(w, "   %s\n", p.Link); err != nil {
				return err
			}
		}
	}
	return nil
}

func runDescribe(ctx context.Context, eng describeEngine, w io.Writer, productURL, format string) error {
	if format != scraper.FormatText && format != scraper.FormatMarkdown {
		return fmt.Errorf("unsupported output format: %s", format)
	}

	description, err := eng.Describe(ctx, productURL, format)
	if err != nil {
		return err
	}
	if description == "" {
		return errNoDescription
	}
	_, err = fmt.Fprintln(w, description)
	return err
}
