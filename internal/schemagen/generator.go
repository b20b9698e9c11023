// Package schemagen turns a checked catalog (domain + design) into DDL
// statements for one of two physical paradigms: FLAT (one relational
// table per top-level Set) or JSON_NESTED (one key/value JSONB table per
// top-level Set, with nested structs and sets folded into the JSON
// document).
package schemagen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
)

// resolveLogger returns the first non-nil logger passed, or a no-op
// logger when none was given, so GenerateAll accepts an optional
// *zap.Logger without breaking existing callers.
func resolveLogger(log []*zap.Logger) *zap.Logger {
	for _, l := range log {
		if l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// Paradigm names a physical schema strategy.
type Paradigm string

const (
	FLAT       Paradigm = "FLAT"
	JSONNested Paradigm = "JSON_NESTED"
)

// ParseParadigm validates a paradigm name from a design document.
func ParseParadigm(s string) (Paradigm, error) {
	switch Paradigm(s) {
	case FLAT, JSONNested:
		return Paradigm(s), nil
	default:
		return "", fmt.Errorf("schemagen: unknown paradigm %q, expected FLAT or JSON_NESTED", s)
	}
}

// Generator produces the DDL statements that create one physical schema
// for a checked catalog.
type Generator interface {
	// GenerateCreateTable emits the statements needed to create the
	// tables backing the design's top-level Sets, in dependency order.
	GenerateCreateTable(c *catalog.Catalog) ([]string, error)
	// GenerateAddPrimaryKeys emits the statements that add primary keys
	// (or, for JSON_NESTED, unique indices over JSON paths) once tables
	// exist.
	GenerateAddPrimaryKeys(c *catalog.Catalog) ([]string, error)
	// GenerateAddForeignKeys emits the statements that add foreign keys
	// between tables. JSON_NESTED returns an empty slice with a warning
	// recorded via Warnings, since PostgreSQL cannot declare a foreign
	// key over a JSONB path.
	GenerateAddForeignKeys(c *catalog.Catalog) ([]string, error)
	// Warnings returns non-fatal observations recorded by the most
	// recent Generate* call (e.g. "foreign keys unsupported").
	Warnings() []string
}

// New returns the Generator for the requested paradigm.
func New(p Paradigm) (Generator, error) {
	switch p {
	case FLAT:
		return &flatGenerator{}, nil
	case JSONNested:
		return &jsonNestedGenerator{}, nil
	default:
		return nil, fmt.Errorf("schemagen: unknown paradigm %q", p)
	}
}

// GenerateAll runs GenerateCreateTable, GenerateAddPrimaryKeys and
// GenerateAddForeignKeys in that order, matching the original
// Relational.generate_sql entry point's statement ordering.
func GenerateAll(g Generator, c *catalog.Catalog, log ...*zap.Logger) ([]string, error) {
	l := resolveLogger(log)
	var all []string

	creates, err := g.GenerateCreateTable(c)
	if err != nil {
		return nil, fmt.Errorf("schemagen: create table: %w", err)
	}
	all = append(all, creates...)

	pks, err := g.GenerateAddPrimaryKeys(c)
	if err != nil {
		return nil, fmt.Errorf("schemagen: add primary keys: %w", err)
	}
	all = append(all, pks...)

	fks, err := g.GenerateAddForeignKeys(c)
	if err != nil {
		return nil, fmt.Errorf("schemagen: add foreign keys: %w", err)
	}
	all = append(all, fks...)

	for _, w := range g.Warnings() {
		l.Warn("schemagen warning", zap.String("message", w))
	}
	l.Debug("generated schema", zap.Int("statements", len(all)))
	return all, nil
}
