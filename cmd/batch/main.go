package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/arunkumar2k5/clapclient/internal/catalog"
	"github.com/arunkumar2k5/clapclient/internal/compare"
	"github.com/arunkumar2k5/clapclient/internal/config"
	"github.com/arunkumar2k5/clapclient/internal/genclient"
	"github.com/arunkumar2k5/clapclient/internal/parts"
	"github.com/arunkumar2k5/clapclient/internal/report"
)

// go run ./cmd/batch -in parts.csv -generate -xlsx results.xlsx
func main() {
	var (
		inPath   = flag.String("in", "", "input CSV (SNO, Manf1, Manf1_partnumber, ...)")
		generate = flag.Bool("generate", true, "ask the generation service for a write-up per row")
		catalogF = flag.Bool("catalog", false, "also fetch specs from the catalog per row")
		jsonOut  = flag.String("json", "", "write all results to this JSON file")
		xlsxOut  = flag.String("xlsx", "", "write one sheet per row to this spreadsheet file")
		timeout  = flag.Duration("timeout", 10*time.Minute, "overall timeout")
	)
	flag.Parse()

	if *inPath == "" {
		log.Fatal("usage: batch -in parts.csv [-generate] [-catalog] [-json out.json] [-xlsx out.xlsx]")
	}

	f, err := os.Open(*inPath)
	if err != nil {
		log.Fatalf("open %s: %v", *inPath, err)
	}
	defer f.Close()

	rows, err := parts.ParseBatchCSV(f)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("no valid component data found in the csv")
	}
	log.Printf("processing %d row(s)", len(rows))

	cfg := config.Load()

	service := &compare.Service{
		Gen:         genclient.New(cfg.GenServerURL),
		Model:       cfg.GenModel,
		Temperature: cfg.GenTemperature,
	}
	if *catalogF {
		client, err := catalog.NewClient(cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogAuthURL, cfg.CatalogSearchURL)
		if err != nil {
			log.Fatalf("catalog client: %v", err)
		}
		service.Catalog = client
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := service.ProcessBatch(ctx, rows, *generate)

	failed := 0
	for _, res := range results {
		if res.Err != "" {
			failed++
			fmt.Printf("%s: ERROR %s\n", res.Label, res.Err)
			continue
		}
		fmt.Printf("%s: ok (%d component(s))\n", res.Label, len(res.Items))
	}
	log.Printf("done: %d ok, %d failed", len(results)-failed, failed)

	if *jsonOut != "" {
		b, err := json.MarshalIndent(results, "", "    ")
		if err != nil {
			log.Fatalf("marshal results: %v", err)
		}
		if err := os.WriteFile(*jsonOut, b, 0o644); err != nil {
			log.Fatalf("write %s: %v", *jsonOut, err)
		}
		log.Printf("results written to %s", *jsonOut)
	}

	if *xlsxOut != "" {
		wb := report.NewWorkbook()
		defer wb.Close()
		seen := make(map[string]int)
		for _, res := range results {
			if err := wb.AddSheet(sheetName(seen, res.Label), res.Table, res.Text); err != nil {
				log.Fatalf("build workbook: %v", err)
			}
		}
		if err := wb.Save(*xlsxOut); err != nil {
			log.Fatalf("write xlsx: %v", err)
		}
		log.Printf("workbook written to %s", *xlsxOut)
	}
}

// maxSheetName is the spreadsheet sheet-name limit, in characters.
const maxSheetName = 31

// sheetName keeps labels unique and within the sheet-name limit.
// Duplicate row labels get a " (2)", " (3)" suffix; without it a repeated
// label would silently overwrite the earlier row's sheet.
func sheetName(seen map[string]int, label string) string {
	label = truncateRunes(label, maxSheetName)
	seen[label]++
	if n := seen[label]; n > 1 {
		suffix := fmt.Sprintf(" (%d)", n)
		label = truncateRunes(label, maxSheetName-len(suffix)) + suffix
	}
	return label
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
