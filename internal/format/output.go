package format

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - jsonl (one JSON object per line; slices are split, useful for piping)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "jsonl":
		return WriteJSONLines(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
//
// NOTE: Output stays strict JSON only so command output is scriptable. If
// extra context is needed, put it in a `meta` object rather than prose.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteJSONLines writes slice values as one compact JSON document per line.
// Non-slice values degrade to a single line, so `--format jsonl` is always
// safe to pass.
func WriteJSONLines(w io.Writer, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return WriteJSON(w, v, false)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := WriteJSON(w, rv.Index(i).Interface(), false); err != nil {
			return err
		}
	}
	return nil
}
