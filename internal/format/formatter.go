package format

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/dev-catena/lacos-sub000/internal/config"
)

// Formatter renders a value to its writer.
type Formatter interface {
	Format(data any) error
}

// GetFormatter returns a formatter writing to w.
func GetFormatter(w io.Writer, format string, useColors bool) (Formatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(w, useColors), nil
	case "json":
		return NewJSONFormatter(w, true), nil
	case "json-compact":
		return NewJSONFormatter(w, false), nil
	case "yaml":
		return NewYAMLFormatter(w), nil
	case "text":
		return NewTextFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Print formats data to stdout using the configured output format.
func Print(data any) error {
	formatter, err := GetFormatter(os.Stdout, config.GetOutputFormat(), config.Get().Format.Colors)
	if err != nil {
		return err
	}
	return formatter.Format(data)
}

// PrintSuccess prints a success message
func PrintSuccess(message string, args ...any) {
	printColored(color.FgGreen, "", message, args...)
}

// PrintError prints an error message
func PrintError(message string, args ...any) {
	printColored(color.FgRed, "Error: ", message, args...)
}

// PrintWarning prints a warning message
func PrintWarning(message string, args ...any) {
	printColored(color.FgYellow, "Warning: ", message, args...)
}

// PrintInfo prints an info message
func PrintInfo(message string, args ...any) {
	printColored(color.FgBlue, "Info: ", message, args...)
}

// PrintDebug prints a debug message if debug mode is enabled
func PrintDebug(message string, args ...any) {
	if config.IsDebug() {
		printColored(color.FgCyan, "", "[DEBUG] "+message, args...)
	}
}

func printColored(attr color.Attribute, plainPrefix, message string, args ...any) {
	if config.Get().Format.Colors {
		color.New(attr).Printf(message+"\n", args...)
		return
	}
	fmt.Printf(plainPrefix+message+"\n", args...)
}

// field is one labelled value extracted from a struct or map.
type field struct {
	key   string
	value any
}

// fieldsOf flattens a map or struct into labelled values. Map keys are
// sorted; struct fields keep declaration order and use their json names.
func fieldsOf(data any) ([]field, bool) {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]field, len(keys))
		for i, k := range keys {
			out[i] = field{key: k, value: v[k]}
		}
		return out, true
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return fieldsOf(m)
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	rt := rv.Type()
	out := make([]field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag := sf.Tag.Get("json"); tag != "" {
			tagName, opts, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
			if strings.Contains(opts, "omitempty") && rv.Field(i).IsZero() {
				continue
			}
		}
		out = append(out, field{key: name, value: rv.Field(i).Interface()})
	}
	return out, true
}

// rowsOf turns a slice value into a list of records.
func rowsOf(data any) ([]any, bool) {
	if items, ok := data.([]any); ok {
		return items, true
	}
	if maps, ok := data.([]map[string]any); ok {
		out := make([]any, len(maps))
		for i, m := range maps {
			out[i] = m
		}
		return out, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// formatHeader converts snake_case and camelCase keys to Title Case.
func formatHeader(key string) string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for i, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z' && i > 0:
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
