// Package loader reads query documents and the data they are tested against.
//
// Both are YAML or JSON. Query mappings keep their key order so operators are
// evaluated as written, and two tags extend the scalar types:
//
//	name: !regex '^ad'
//	created: { $gt: !date 2024-01-01T00:00:00Z }
//
// Query text is rendered as a text/template before it is parsed.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/mfilter/internal/template"
)

// StdinName is the file name that reads standard input.
const StdinName = "-"

var (
	ErrEmpty    = errors.New("empty document")
	ErrTemplate = errors.New("template error")
	ErrRead     = errors.New("read error")
)

// ParseQuery renders text with variables and decodes it as a query. A
// stream with several documents is rejected.
func ParseQuery(text string, variables map[string]any) (any, error) {
	rendered, err := template.ApplyWithName("query", text, variables)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	docs, err := decoder{ordered: true}.decode([]byte(rendered))
	if err != nil {
		return nil, err
	}

	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("%w: query", ErrEmpty)
	case 1:
		return docs[0], nil
	default:
		return nil, fmt.Errorf("%w: query holds %d documents", ErrDecode, len(docs))
	}
}

// ReadQuery reads a query file and parses it with ParseQuery.
func ReadQuery(name string, variables map[string]any) (any, error) {
	src, err := readFile(name)
	if err != nil {
		return nil, err
	}
	return ParseQuery(string(src), variables)
}

// ParseData decodes a data document. A stream of several documents is
// returned as a sequence of them.
func ParseData(src []byte) (any, error) {
	docs, err := decoder{}.decode(src)
	if err != nil {
		return nil, err
	}

	switch len(docs) {
	case 0:
		return nil, fmt.Errorf("%w: data", ErrEmpty)
	case 1:
		return docs[0], nil
	default:
		return docs, nil
	}
}

// ReadData reads and decodes a data file. StdinName reads from stdin.
func ReadData(name string, stdin io.Reader) (any, error) {
	var (
		src []byte
		err error
	)
	if name == StdinName {
		src, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrRead, err)
		}
	} else {
		src, err = readFile(name)
		if err != nil {
			return nil, err
		}
	}

	v, err := ParseData(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func readFile(name string) ([]byte, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return src, nil
}
