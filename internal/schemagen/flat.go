package schemagen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dorm-project/dorm/internal/catalog"
)

// flatGenerator implements the FLAT paradigm: one relational table per
// top-level Set, anchor attributes as the primary key, foreign keys
// derived from association ends that appear among a struct's members.
// Grounded on internal/orm/codegen/ddl_generator.go's GenerateCreateTable
// and _examples/original_source/catalog/first_normal_form.go's
// generate_create_table_statements / generate_add_pk_statements /
// generate_add_fk_statements.
type flatGenerator struct {
	warnings []string
}

func (g *flatGenerator) Warnings() []string { return g.warnings }

// tableColumns returns the column names (in stable anchor-first order)
// and their SQL types for the Set's merged struct attributes.
func (g *flatGenerator) tableColumns(c *catalog.Catalog, s catalog.Set) ([]string, map[string]string, []string, error) {
	anchorSet := map[string]bool{}
	var anchor []string
	cols := map[string]string{}
	var order []string

	for _, structName := range s.StructNames {
		st, ok := c.Edge(structName)
		if !ok || st.Kind != catalog.KindStruct {
			return nil, nil, nil, fmt.Errorf("schemagen: set %q references unknown struct %q", s.Name, structName)
		}
		for _, a := range st.Struct.Anchor {
			if !anchorSet[a] {
				anchorSet[a] = true
				anchor = append(anchor, a)
			}
		}
		for _, memberName := range c.StructPath(structName) {
			atom, ok := c.Atom(memberName)
			if !ok || atom.Kind != catalog.KindAttribute {
				continue
			}
			if _, seen := cols[atom.Attribute.Name]; !seen {
				cols[atom.Attribute.Name] = mapPrimitiveType(atom.Attribute.Type, atom.Attribute.Size)
				order = append(order, atom.Attribute.Name)
			}
		}
	}

	// Unions of structs within a Set become a single table, and siblings
	// sharing that table need a column to tell them apart (IC-Design-
	// discriminator requires the name; this is where it gets materialized).
	if s.Discriminant != "" && len(s.StructNames) > 1 {
		if _, seen := cols[s.Discriminant]; !seen {
			cols[s.Discriminant] = mapPrimitiveType("varchar", 64)
			order = append(order, s.Discriminant)
		}
	}

	sort.Strings(anchor)
	sorted := make([]string, 0, len(order))
	for _, a := range anchor {
		sorted = append(sorted, a)
	}
	rest := make([]string, 0, len(order))
	for _, name := range order {
		if !anchorSet[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	sorted = append(sorted, rest...)

	return sorted, cols, anchor, nil
}

func (g *flatGenerator) GenerateCreateTable(c *catalog.Catalog) ([]string, error) {
	order, err := c.SetDependencyOrder()
	if err != nil {
		return nil, err
	}

	var statements []string
	for _, setName := range order {
		set, ok := c.Edge(setName)
		if !ok {
			continue
		}
		cols, types, _, err := g.tableColumns(c, set.Set)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("schemagen: set %q has no columns to create", setName)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", quoteIdentifier(setName))
		for i, col := range cols {
			sep := ","
			if i == len(cols)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  %s %s%s\n", quoteIdentifier(col), types[col], sep)
		}
		b.WriteString(");")
		statements = append(statements, b.String())
	}
	return statements, nil
}

func (g *flatGenerator) GenerateAddPrimaryKeys(c *catalog.Catalog) ([]string, error) {
	var statements []string
	for _, set := range c.Sets() {
		_, _, anchor, err := g.tableColumns(c, set)
		if err != nil {
			return nil, err
		}
		if len(anchor) == 0 {
			return nil, fmt.Errorf("schemagen: set %q has no anchor to derive a primary key from", set.Name)
		}
		quoted := make([]string, len(anchor))
		for i, a := range anchor {
			quoted[i] = quoteIdentifier(a)
		}
		statements = append(statements, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s);", quoteIdentifier(set.Name), strings.Join(quoted, ", ")))
	}
	return statements, nil
}

func (g *flatGenerator) GenerateAddForeignKeys(c *catalog.Catalog) ([]string, error) {
	var statements []string
	for _, set := range c.Sets() {
		for _, structName := range set.StructNames {
			st, ok := c.Edge(structName)
			if !ok {
				continue
			}
			for _, member := range st.Struct.Members {
				atom, ok := c.Atom(member)
				if !ok || atom.Kind != catalog.KindAssociationEnd {
					continue
				}
				targetClass := atom.AssociationEnd.Target
				targetSets := setsAnchoredOn(c, targetClass)
				if len(targetSets) == 0 {
					continue
				}
				sort.Strings(targetSets)
				stmt := fmt.Sprintf(
					"ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s;",
					quoteIdentifier(set.Name), quoteIdentifier(member), quoteIdentifier(targetSets[0]),
				)
				statements = append(statements, stmt)
			}
		}
	}
	return statements, nil
}

// setsAnchoredOn returns the names of Sets whose structs anchor on the
// named class, sorted for determinism.
func setsAnchoredOn(c *catalog.Catalog, className string) []string {
	var out []string
	for _, s := range c.Sets() {
		for _, structName := range s.StructNames {
			st, ok := c.Edge(structName)
			if !ok {
				continue
			}
			for _, a := range st.Struct.Anchor {
				if atom, ok := c.Atom(a); ok && atom.Kind == catalog.KindClass && atom.Class.Name == className {
					out = append(out, s.Name)
				}
			}
		}
	}
	return out
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
