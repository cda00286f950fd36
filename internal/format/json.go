package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter handles JSON output formatting
type JSONFormatter struct {
	out    io.Writer
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer, pretty bool) *JSONFormatter {
	return &JSONFormatter{out: w, pretty: pretty}
}

// Format formats data as JSON
func (f *JSONFormatter) Format(data any) error {
	enc := json.NewEncoder(f.out)
	enc.SetEscapeHTML(false)
	if f.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
