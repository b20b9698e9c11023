package schemagen

import (
	"fmt"
	"strings"

	"github.com/dorm-project/dorm/internal/catalog"
)

// jsonNestedGenerator implements the JSON_NESTED paradigm: one table per
// top-level Set with a surrogate SERIAL key and a single JSONB value
// column holding the whole nested document. Grounded on
// _examples/original_source/catalog/non_first_normal_form_json.py's
// generate_create_table_statements / generate_add_pk_statements /
// generate_add_fk_statements.
type jsonNestedGenerator struct {
	warnings []string
}

func (g *jsonNestedGenerator) Warnings() []string { return g.warnings }

func (g *jsonNestedGenerator) GenerateCreateTable(c *catalog.Catalog) ([]string, error) {
	order, err := c.SetDependencyOrder()
	if err != nil {
		return nil, err
	}
	var statements []string
	for _, setName := range order {
		statements = append(statements, fmt.Sprintf("CREATE TABLE %s (\n  key SERIAL,\n  value JSONB\n);", quoteIdentifier(setName)))
	}
	return statements, nil
}

func (g *jsonNestedGenerator) GenerateAddPrimaryKeys(c *catalog.Catalog) ([]string, error) {
	var statements []string
	for _, set := range c.Sets() {
		if len(set.StructNames) == 0 {
			return nil, fmt.Errorf("schemagen: set %q has no structs", set.Name)
		}
		// IC-Design4 (checked upstream) guarantees every struct packed
		// into a set shares the same anchor shape, so the first one's
		// anchor speaks for the whole set.
		st, ok := c.Edge(set.StructNames[0])
		if !ok || st.Kind != catalog.KindStruct {
			return nil, fmt.Errorf("schemagen: set %q references unknown struct %q", set.Name, set.StructNames[0])
		}
		if len(st.Struct.Anchor) == 0 {
			return nil, fmt.Errorf("schemagen: struct %q has no anchor", st.Struct.Name)
		}

		statements = append(statements, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (key);", quoteIdentifier(set.Name)))

		paths := make([]string, 0, len(st.Struct.Anchor))
		for _, key := range st.Struct.Anchor {
			paths = append(paths, fmt.Sprintf("(value->>'%s')", key))
		}
		statements = append(statements, fmt.Sprintf(
			"CREATE UNIQUE INDEX pk_%s ON %s (%s);",
			set.Name, quoteIdentifier(set.Name), strings.Join(paths, ", "),
		))
	}
	return statements, nil
}

func (g *jsonNestedGenerator) GenerateAddForeignKeys(c *catalog.Catalog) ([]string, error) {
	g.warnings = append(g.warnings, "foreign keys cannot be declared over PostgreSQL JSONB attributes in the JSON_NESTED paradigm")
	return nil, nil
}
