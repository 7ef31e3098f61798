// Package console formats command output.
package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// PrintResponse writes `header: <v as indented JSON>`. Raw JSON is
// re-indented as is.
func PrintResponse(w io.Writer, header string, v any) error {
	var out []byte
	var err error
	switch raw := v.(type) {
	case json.RawMessage:
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		var buf bytes.Buffer
		if err = json.Indent(&buf, raw, "", "    "); err == nil {
			out = buf.Bytes()
		}
	default:
		out, err = json.MarshalIndent(v, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("format %s: %w", header, err)
	}
	_, err = fmt.Fprintf(w, "%s: %s\n", header, out)
	return err
}

// Field writes one aligned "label: value" line.
func Field(w io.Writer, label string, format string, args ...any) {
	fmt.Fprintf(w, "%-16s %s\n", label+":", fmt.Sprintf(format, args...))
}
