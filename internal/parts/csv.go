package parts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxItemsPerRow bounds how many Manf<N> column groups one row may carry.
const maxItemsPerRow = 5

// BatchRow is one CSV row worth of components to compare together.
type BatchRow struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// ParseBatchCSV reads an uploaded batch file. The expected shape is a
// header row with columns like SNO, Manf1, Manf1_partnumber, Manf2,
// Manf2_partnumber, ... Column matching is case-insensitive and
// BOM-tolerant. Rows with no usable component data are skipped.
func ParseBatchCSV(r io.Reader) ([]BatchRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv must include a header row with column names")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []BatchRow
	for rowNum := 1; ; rowNum++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum, err)
		}

		normalized := make(map[string]string, len(header))
		raw := make(map[string]string, len(header))
		for i, col := range header {
			if i >= len(fields) {
				break
			}
			value := strings.TrimSpace(fields[i])
			raw[col] = value
			normalized[strings.ToLower(strings.TrimSpace(col))] = value
		}

		items := extractRowItems(normalized)
		if len(items) == 0 {
			continue
		}

		label := raw["SNO"]
		if label == "" {
			label = normalized["sno"]
		}
		label = strings.TrimSpace(label)
		if label == "" {
			label = strconv.Itoa(rowNum)
		}

		rows = append(rows, BatchRow{Label: label, Items: items})
	}
	return rows, nil
}

// extractRowItems pulls up to maxItemsPerRow (manufacturer, part number)
// pairs out of one normalized row. The part number column for ManfN may
// be ManfN_partnumber, ManfN_pn, or any ManfN* column whose name
// mentions "part".
func extractRowItems(normalized map[string]string) []Item {
	var items []Item
	for idx := 1; idx <= maxItemsPerRow; idx++ {
		base := fmt.Sprintf("manf%d", idx)
		manufacturer := normalized[base]

		partNumber := normalized[base+"_partnumber"]
		if partNumber == "" {
			partNumber = normalized[base+"_pn"]
		}
		if partNumber == "" {
			for key, value := range normalized {
				if key == base || value == "" {
					continue
				}
				if strings.HasPrefix(key, base) && strings.Contains(key, "part") {
					partNumber = value
					break
				}
			}
		}

		if manufacturer != "" || partNumber != "" {
			items = append(items, Item{Manufacturer: manufacturer, PartNumber: partNumber})
		}
	}
	return items
}
