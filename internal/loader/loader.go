// Package loader parses the domain, design and query documents described
// in spec.md §6 from YAML into catalog mutations. It performs no
// semantic validation of its own: a document can be syntactically well
// formed and still violate an invariant, and that is the checker's job,
// not the loader's.
package loader

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// resolveLogger returns the first non-nil logger passed, or a no-op
// logger when none was given, so every loader entry point accepts an
// optional *zap.Logger without breaking existing callers.
func resolveLogger(log []*zap.Logger) *zap.Logger {
	for _, l := range log {
		if l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// ParseError reports a structural problem in a loaded document. Line and
// Column are filled in only when the error is built by parseErrorAt from
// a yaml.Node; the errors decode and errf return leave them zero, and a
// YAML syntax error carries its position only inside Message.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func parseErrorAt(file string, node *yaml.Node, format string, args ...any) *ParseError {
	pe := &ParseError{File: file, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		pe.Line = node.Line
		pe.Column = node.Column
	}
	return pe
}

// decode unmarshals data into a yaml.Node first (to retain source
// positions for later structural errors) and then into dst.
func decode(file string, data []byte, dst any) (*yaml.Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{File: file, Message: err.Error()}
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return &root, &ParseError{File: file, Message: err.Error()}
	}
	return &root, nil
}
