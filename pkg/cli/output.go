package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// Format is an output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	// FormatRaw writes strings and byte slices as is and falls back to
	// YAML for anything else.
	FormatRaw Format = "raw"
)

// ParseFormat validates a --output flag value. The empty string selects
// YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatYAML, nil
	case FormatYAML, FormatJSON, FormatRaw:
		return f, nil
	}
	return "", fmt.Errorf("cli: unsupported output format %q (want yaml, json or raw)", s)
}

// Printer writes values in one format.
type Printer struct {
	Format Format
	// W defaults to os.Stdout.
	W io.Writer
}

// Print writes v.
func (p Printer) Print(v any) error {
	w := p.W
	if w == nil {
		w = os.Stdout
	}
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		return writeYAML(w, v)
	case FormatRaw:
		switch raw := v.(type) {
		case []byte:
			_, err := w.Write(raw)
			return err
		case string:
			_, err := io.WriteString(w, raw)
			return err
		case fmt.Stringer:
			_, err := fmt.Fprintln(w, raw.String())
			return err
		}
		return writeYAML(w, v)
	}
	return fmt.Errorf("cli: unsupported output format %q", p.Format)
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("cli: format yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}
