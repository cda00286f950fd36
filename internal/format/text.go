package format

import (
	"fmt"
	"io"
)

// TextFormatter handles simple text output formatting
type TextFormatter struct {
	out io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{out: w}
}

// Format formats data as "Key: value" lines
func (f *TextFormatter) Format(data any) error {
	if data == nil {
		fmt.Fprintln(f.out, "No data")
		return nil
	}
	if s, ok := data.(string); ok {
		fmt.Fprintln(f.out, s)
		return nil
	}
	if fields, ok := fieldsOf(data); ok {
		f.writeFields("", fields)
		return nil
	}
	if rows, ok := rowsOf(data); ok {
		if len(rows) == 0 {
			fmt.Fprintln(f.out, "No data")
			return nil
		}
		for i, row := range rows {
			fields, ok := fieldsOf(row)
			if !ok {
				fmt.Fprintf(f.out, "%v\n", row)
				continue
			}
			if i > 0 {
				fmt.Fprintln(f.out)
			}
			fmt.Fprintf(f.out, "Item %d:\n", i+1)
			f.writeFields("  ", fields)
		}
		return nil
	}
	fmt.Fprintf(f.out, "%v\n", data)
	return nil
}

func (f *TextFormatter) writeFields(indent string, fields []field) {
	for _, fl := range fields {
		value := fl.value
		if value == nil {
			value = "N/A"
		}
		fmt.Fprintf(f.out, "%s%s: %v\n", indent, formatHeader(fl.key), value)
	}
}
