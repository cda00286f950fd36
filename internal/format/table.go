package format

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter handles table output formatting
type TableFormatter struct {
	out       io.Writer
	useColors bool
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer, useColors bool) *TableFormatter {
	return &TableFormatter{out: w, useColors: useColors}
}

// Format renders a record as a two-column table and a slice of records as
// one row per record.
func (f *TableFormatter) Format(data any) error {
	if data == nil {
		fmt.Fprintln(f.out, "No data to display")
		return nil
	}
	if fields, ok := fieldsOf(data); ok {
		return f.formatRecord(fields)
	}
	if rows, ok := rowsOf(data); ok {
		return f.formatRows(rows)
	}
	fmt.Fprintf(f.out, "%v\n", data)
	return nil
}

func (f *TableFormatter) formatRecord(fields []field) error {
	table := f.newTable([]string{"Property", "Value"})
	for _, fl := range fields {
		table.Append([]string{formatHeader(fl.key), f.formatValue(fl.value)})
	}
	table.Render()
	return nil
}

func (f *TableFormatter) formatRows(rows []any) error {
	if len(rows) == 0 {
		fmt.Fprintln(f.out, "No data to display")
		return nil
	}

	first, ok := fieldsOf(rows[0])
	if !ok {
		table := f.newTable([]string{"Value"})
		for _, item := range rows {
			table.Append([]string{f.formatValue(item)})
		}
		table.Render()
		return nil
	}

	keys := make([]string, len(first))
	headers := make([]string, len(first))
	for i, fl := range first {
		keys[i] = fl.key
		headers[i] = formatHeader(fl.key)
	}

	table := f.newTable(headers)
	for _, row := range rows {
		fields, _ := fieldsOf(row)
		byKey := make(map[string]any, len(fields))
		for _, fl := range fields {
			byKey[fl.key] = fl.value
		}
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = f.formatValue(byKey[k])
		}
		table.Append(values)
	}
	table.Render()
	return nil
}

func (f *TableFormatter) newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(f.out)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	if f.useColors {
		colors := make([]tablewriter.Colors, len(headers))
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiBlueColor}
		}
		table.SetHeaderColor(colors...)
	}
	return table
}

func (f *TableFormatter) formatValue(value any) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if f.useColors {
			if v {
				return color.GreenString("true")
			}
			return color.RedString("false")
		}
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
