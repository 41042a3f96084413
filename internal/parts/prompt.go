package parts

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent with every generation request.
const SystemPrompt = "Be concise. table format to state the parameters"

// BuildPrompt renders the comparison prompt for one batch of items.
// sourceLabel tells the model where the batch came from, e.g.
// "Manual entry" or "CSV row 3".
func BuildPrompt(items []Item, sourceLabel string) string {
	var lines []string
	for i, item := range items {
		manufacturer := item.Manufacturer
		if manufacturer == "" {
			manufacturer = "Unknown manufacturer"
		}
		partNumber := item.PartNumber
		if partNumber == "" {
			partNumber = "Unknown part number"
		}
		lines = append(lines, fmt.Sprintf("%d. Manufacturer: %s; Part number: %s", i+1, manufacturer, partNumber))
	}

	var b strings.Builder
	b.WriteString("You are an electronics expert. Compare the following components for resolution, ")
	b.WriteString("interface, supply voltage, environmental considerations, and typical use cases. ")
	b.WriteString("Highlight notable trade-offs or suitability for lifecycle assessment.\n\n")
	fmt.Fprintf(&b, "Source: %s\n", sourceLabel)
	fmt.Fprintf(&b, "Components:\n%s\n\n", strings.Join(lines, "\n"))
	b.WriteString("Provide a concise table summarizing the comparison followed by key bullet points.")
	return b.String()
}
