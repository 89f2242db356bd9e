// Package output writes evaluation results as JSON or YAML documents.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/goccy/go-yaml"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrEncode        = errors.New("encode error")
)

// ParseFormat accepts "json" and "yaml".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encoder writes one document per Encode call. YAML documents after the
// first are preceded by a "---" separator.
type Encoder struct {
	w      io.Writer
	format Format
	count  int
}

func NewEncoder(w io.Writer, format Format) *Encoder {
	return &Encoder{w: w, format: format}
}

func (e *Encoder) Encode(v any) error {
	v = plain(v)

	var (
		out []byte
		err error
	)
	switch e.format {
	case FormatJSON:
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	case FormatYAML:
		out, err = yaml.Marshal(v)
		if err == nil && e.count > 0 {
			out = append([]byte("---\n"), out...)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, e.format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	if _, err := e.w.Write(out); err != nil {
		return err
	}
	e.count++
	return nil
}

// plain replaces values neither encoder renders faithfully. Patterns become
// their source text and ordered mappings become maps.
func plain(v any) any {
	switch t := v.(type) {
	case *regexp.Regexp:
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = plain(item)
		}
		return out
	case yaml.MapSlice:
		out := make(map[string]any, len(t))
		for _, item := range t {
			out[fmt.Sprint(item.Key)] = plain(item.Value)
		}
		return out
	default:
		return v
	}
}
