package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arunkumar2k5/clapclient/internal/catalog"
	"github.com/arunkumar2k5/clapclient/internal/compare"
	"github.com/arunkumar2k5/clapclient/internal/config"
	"github.com/arunkumar2k5/clapclient/internal/genclient"
	"github.com/arunkumar2k5/clapclient/internal/parts"
	"github.com/arunkumar2k5/clapclient/internal/report"
)

// go run ./cmd/compare -parts "MLX90393,HMC5883L" -generate -xlsx out.xlsx
func main() {
	var (
		partsArg = flag.String("parts", "", "comma-separated part numbers to compare")
		generate = flag.Bool("generate", false, "ask the generation service for a comparison write-up")
		jsonOut  = flag.String("json", "", "write the fetched specs to this JSON file")
		xlsxOut  = flag.String("xlsx", "", "write the comparison to this spreadsheet file")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall timeout")
	)
	flag.Parse()

	partNumbers := splitParts(*partsArg)
	if len(partNumbers) == 0 {
		log.Fatal("usage: compare -parts \"MLX90393,HMC5883L\" [-generate] [-json out.json] [-xlsx out.xlsx]")
	}

	cfg := config.Load()

	client, err := catalog.NewClient(cfg.CatalogClientID, cfg.CatalogClientSecret, cfg.CatalogAuthURL, cfg.CatalogSearchURL)
	if err != nil {
		log.Fatalf("catalog client: %v", err)
	}

	service := &compare.Service{
		Catalog:     client,
		Gen:         genclient.New(cfg.GenServerURL),
		Model:       cfg.GenModel,
		Temperature: cfg.GenTemperature,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := service.CompareParts(ctx, partNumbers, "Manual entry", *generate)
	if err != nil {
		log.Fatalf("compare failed: %v", err)
	}

	printTable(res.Table)

	if res.Text != "" {
		fmt.Println("\n=== COMPARISON ===")
		fmt.Println(res.Text)
		if len(res.Usage) > 0 {
			fmt.Printf("\nUsage: %v\n", res.Usage)
		}
	}

	if *jsonOut != "" {
		if err := report.WriteJSON(*jsonOut, res.Records); err != nil {
			log.Fatalf("write json: %v", err)
		}
		log.Printf("specs written to %s", *jsonOut)
	}

	if *xlsxOut != "" {
		wb := report.NewWorkbook()
		defer wb.Close()
		if err := wb.AddSheet("Comparison", res.Table, res.Text); err != nil {
			log.Fatalf("build workbook: %v", err)
		}
		if err := wb.Save(*xlsxOut); err != nil {
			log.Fatalf("write xlsx: %v", err)
		}
		log.Printf("comparison written to %s", *xlsxOut)
	}
}

func splitParts(arg string) []string {
	var out []string
	for _, p := range strings.Split(arg, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printTable(table parts.Table) {
	if len(table.Columns) == 0 {
		fmt.Println("(no specification data)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	header := "Attribute"
	for _, col := range table.Columns {
		header += "\t" + col.Name
	}
	fmt.Fprintln(w, header)

	for i, attr := range table.Attributes {
		line := attr
		for _, col := range table.Columns {
			line += "\t" + col.Values[i]
		}
		fmt.Fprintln(w, line)
	}
	_ = w.Flush()
}
