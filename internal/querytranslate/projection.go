package querytranslate

import (
	"fmt"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/schemagen"
)

// synthesizeProjection resolves each projected attribute name to the
// first Set in combo whose coverage includes it, and returns the
// qualified column projection list, plus the loose-end projections of
// spec.md §4.4 step 4: identifiers of classes that are absent from
// branch but reachable through an association end named directly in
// branch, projected aliased to the association end's own name rather
// than the target class's identifier name.
func synthesizeProjection(c *catalog.Catalog, paradigm schemagen.Paradigm, combo, branch, project []string) ([]string, error) {
	out := make([]string, 0, len(project))
	for _, attr := range project {
		owner := ownerSet(c, combo, attr)
		if owner == "" {
			return nil, fmt.Errorf("querytranslate: projected attribute %q is not covered by set combination %v", attr, combo)
		}
		out = append(out, fmt.Sprintf("%s AS %s", columnRef(paradigm, owner, attr), quoteIdentifier(attr)))
	}

	inBranch := map[string]bool{}
	for _, name := range branch {
		inBranch[name] = true
	}
	for _, name := range branch {
		end, ok := c.Atom(name)
		if !ok || end.Kind != catalog.KindAssociationEnd {
			continue
		}
		if inBranch[end.AssociationEnd.Target] {
			continue // the target class is itself in the pattern; its own attributes project normally
		}
		target, ok := c.Atom(end.AssociationEnd.Target)
		if !ok || target.Kind != catalog.KindClass || target.Class.Identifier == "" {
			continue
		}
		owner := ownerSet(c, combo, target.Class.Identifier)
		if owner == "" {
			return nil, fmt.Errorf("querytranslate: association end %q reaches class %q, whose identifier %q is not covered by set combination %v", name, end.AssociationEnd.Target, target.Class.Identifier, combo)
		}
		out = append(out, fmt.Sprintf("%s AS %s", columnRef(paradigm, owner, target.Class.Identifier), quoteIdentifier(name)))
	}

	return out, nil
}

func ownerSet(c *catalog.Catalog, combo []string, attr string) string {
	for _, setName := range combo {
		if setCoverage(c, setName)[attr] {
			return setName
		}
	}
	return ""
}

func quoteIdentifier(name string) string {
	return `"` + name + `"`
}
