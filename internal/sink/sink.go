// Package sink executes the statements the schema generator, query
// translator and migration planner produce against a real database, and
// persists the catalog's schema-level metadata the way
// _examples/original_source/catalog/relational.py does: as a JSON blob
// attached to the schema itself rather than a separate bookkeeping
// table, so the metadata always travels with the schema it describes.
package sink

import "context"

// Metadata mirrors relational.py's {domain, design, tables_created,
// data_migrated} schema-comment payload. HasData gates the Migration
// Planner (spec.md §4.5): a design with no data cannot be a migration
// source.
type Metadata struct {
	Domain        string `json:"domain"`
	Design        string `json:"design"`
	TablesCreated bool   `json:"tables_created"`
	DataMigrated  bool   `json:"data_migrated"`
	HasData       bool   `json:"has_data"`
}

// Sink applies generated statements to a physical store and persists the
// catalog's metadata alongside it. Every SPEC_FULL.md compiler
// (Schema Generator, Query Translator, Migration Planner) hands its
// output to a Sink rather than assuming a concrete driver.
type Sink interface {
	// Execute runs statements sequentially inside a single transaction,
	// matching internal/orm/migrate/runner.go's MigrateUp contract: all
	// statements apply, or none do.
	Execute(ctx context.Context, statements []string) error
	ReadMetadata(ctx context.Context) (Metadata, error)
	WriteMetadata(ctx context.Context, m Metadata) error
	Close() error
}
