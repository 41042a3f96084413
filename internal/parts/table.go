package parts

import "fmt"

// Table is a comparison view over a batch of records: one column per
// component, one row per distinct attribute.
type Table struct {
	// Attributes holds the row labels in first-seen order across all
	// records in the batch.
	Attributes []string `json:"attributes"`
	Columns    []Column `json:"columns"`
}

// Column is one component's values, parallel to Table.Attributes. An
// attribute absent for this component holds "-".
type Column struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// BuildTable reshapes a batch of records into a comparison table.
// Attribute rows appear in first-seen order; duplicate part numbers get
// a " (2)", " (3)" ... column suffix; missing values render as "-".
func BuildTable(records []*Record) Table {
	var t Table
	if len(records) == 0 {
		return t
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		for _, name := range rec.Names() {
			if !seen[name] {
				seen[name] = true
				t.Attributes = append(t.Attributes, name)
			}
		}
	}

	used := make(map[string]int)
	for i, rec := range records {
		name := rec.PartNumber()
		if name == "" {
			name = fmt.Sprintf("Component %d", i+1)
		}
		used[name]++
		if used[name] > 1 {
			name = fmt.Sprintf("%s (%d)", name, used[name])
		}

		col := Column{Name: name, Values: make([]string, 0, len(t.Attributes))}
		for _, attr := range t.Attributes {
			v, ok := rec.Get(attr)
			if !ok {
				v = "-"
			}
			col.Values = append(col.Values, v)
		}
		t.Columns = append(t.Columns, col)
	}
	return t
}
