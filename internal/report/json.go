// Package report renders batch results to local files: a JSON array of
// per-part attribute mappings, or a spreadsheet workbook.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arunkumar2k5/clapclient/internal/parts"
)

// WriteJSON writes one record object per part, attribute order
// preserved, indented.
func WriteJSON(path string, records []*parts.Record) error {
	b, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
