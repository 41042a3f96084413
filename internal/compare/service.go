// Package compare orchestrates one comparison batch: catalog lookups,
// table building, and the optional generation round trip.
package compare

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/arunkumar2k5/clapclient/internal/catalog"
	"github.com/arunkumar2k5/clapclient/internal/genclient"
	"github.com/arunkumar2k5/clapclient/internal/genwire"
	"github.com/arunkumar2k5/clapclient/internal/parts"
)

// Service runs comparisons. Catalog and Gen are both optional: without
// a catalog the records are built from the part numbers alone, without
// a generation backend no write-up is requested.
type Service struct {
	Catalog     catalog.Fetcher
	Gen         genclient.Caller
	Model       string
	Temperature float32
}

// Result is everything one comparison produced. Err is set instead of
// aborting when a CSV row fails mid-batch.
type Result struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Items   []parts.Item    `json:"items"`
	Records []*parts.Record `json:"records,omitempty"`
	Table   parts.Table     `json:"table"`
	Text    string          `json:"text,omitempty"`
	Usage   map[string]any  `json:"usage,omitempty"`
	Err     string          `json:"error,omitempty"`
}

// CompareParts compares plain part numbers (manual entry or CLI).
func (s *Service) CompareParts(ctx context.Context, partNumbers []string, sourceLabel string, generate bool) (*Result, error) {
	items := make([]parts.Item, 0, len(partNumbers))
	for _, pn := range partNumbers {
		pn = strings.TrimSpace(pn)
		if pn == "" {
			continue
		}
		items = append(items, parts.Item{PartNumber: pn})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no part numbers given")
	}
	return s.CompareItems(ctx, items, sourceLabel, generate)
}

// CompareItems compares (manufacturer, part number) items. A failed
// generation call errors out; catalog lookups degrade per record inside
// the catalog client.
func (s *Service) CompareItems(ctx context.Context, items []parts.Item, sourceLabel string, generate bool) (*Result, error) {
	res := &Result{
		ID:    uuid.NewString(),
		Label: sourceLabel,
		Items: items,
	}

	if s.Catalog != nil {
		partNumbers := make([]string, 0, len(items))
		for _, item := range items {
			if strings.TrimSpace(item.PartNumber) != "" {
				partNumbers = append(partNumbers, item.PartNumber)
			}
		}
		if len(partNumbers) > 0 {
			records, err := s.Catalog.FetchSpecs(ctx, partNumbers)
			if err != nil {
				return nil, fmt.Errorf("catalog lookup: %w", err)
			}
			res.Records = records
			res.Table = parts.BuildTable(records)
			fillManufacturers(res.Items, records)
		}
	}

	if generate && s.Gen != nil {
		data, err := s.Gen.Generate(ctx, genwire.Params{
			Prompt:      parts.BuildPrompt(res.Items, sourceLabel),
			System:      parts.SystemPrompt,
			Model:       s.Model,
			Temperature: s.Temperature,
			Format:      "markdown",
		})
		if err != nil {
			return nil, err
		}
		res.Text = data.Text
		res.Usage = data.Usage
	}

	return res, nil
}

// ProcessBatch runs one comparison per CSV row. A failed row records
// its error and never aborts the remaining rows.
func (s *Service) ProcessBatch(ctx context.Context, rows []parts.BatchRow, generate bool) []*Result {
	results := make([]*Result, 0, len(rows))
	for _, row := range rows {
		label := "CSV row " + row.Label
		res, err := s.CompareItems(ctx, row.Items, label, generate)
		if err != nil {
			log.Printf("[compare] row %s: %v", row.Label, err)
			results = append(results, &Result{
				ID:    uuid.NewString(),
				Label: label,
				Items: row.Items,
				Err:   err.Error(),
			})
			continue
		}
		results = append(results, res)
	}
	return results
}

// fillManufacturers backfills item manufacturers from catalog records
// so prompts name the manufacturer when the caller only had a part
// number. Matching is positional over items that carry part numbers;
// the blank-item check must mirror the one used to build the catalog
// request or the alignment drifts.
func fillManufacturers(items []parts.Item, records []*parts.Record) {
	ri := 0
	for i := range items {
		if strings.TrimSpace(items[i].PartNumber) == "" {
			continue
		}
		if ri >= len(records) {
			return
		}
		if items[i].Manufacturer == "" {
			if mfr, ok := records[ri].Get(parts.AttrManufacturer); ok {
				items[i].Manufacturer = mfr
			}
		}
		ri++
	}
}
