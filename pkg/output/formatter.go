package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Formatter renders result data for a particular output format
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// NewFormatter returns the formatter for the given format name.
// Unknown formats fall back to JSON.
func NewFormatter(format string) Formatter {
	switch format {
	case "yaml":
		return &YAMLFormatter{}
	case "table":
		return &TableFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders data as JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// YAMLFormatter renders data as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, _ bool) ([]byte, error) {
	return yaml.Marshal(data)
}

// TableFormatter renders data as aligned key/value rows. Nested structures
// are flattened with dotted keys.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any, _ bool) ([]byte, error) {
	// Round-trip through JSON so any result struct flattens uniformly
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten data for table output: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode flattened data: %w", err)
	}

	rows := map[string]string{}
	printer := message.NewPrinter(language.English)
	flattenValue("", generic, printer, rows)

	keys := make([]string, 0, len(rows))
	maxWidth := 0
	for k := range rows {
		keys = append(keys, k)
		if len(k) > maxWidth {
			maxWidth = len(k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%-*s  %s\n", maxWidth, k, rows[k])
	}
	return buf.Bytes(), nil
}

func flattenValue(prefix string, v any, printer *message.Printer, rows map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenValue(key, child, printer, rows)
		}
	case []any:
		rows[prefix] = printer.Sprintf("%d items", len(val))
	case float64:
		rows[prefix] = printer.Sprintf("%.5g", val)
	case nil:
		rows[prefix] = "-"
	default:
		rows[prefix] = fmt.Sprintf("%v", val)
	}
}
