package querytranslate

import (
	"fmt"
	"sort"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/diagnostics"
	"github.com/dorm-project/dorm/internal/schemagen"
)

// joinClause is one FROM/JOIN entry in the assembled SELECT. The first
// joinClause in a slice is always the base FROM table; every subsequent
// one carries the ON condition joining it to what came before.
type joinClause struct {
	table string
	on    string
}

// setCoverage returns the set of atom names (classes, attributes,
// association ends) reachable through a Set's structs.
func setCoverage(c *catalog.Catalog, setName string) map[string]bool {
	coverage := map[string]bool{}
	set, ok := c.Edge(setName)
	if !ok || set.Kind != catalog.KindSet {
		return coverage
	}
	for _, structName := range set.Set.StructNames {
		for _, name := range c.StructPath(structName) {
			coverage[name] = true
		}
		if st, ok := c.Edge(structName); ok {
			coverage[st.Struct.Name] = true
		}
	}
	return coverage
}

// mapBuckets finds the smallest combination of Sets whose combined
// coverage includes every class named in branch and every attribute
// named in project (the "bucket combination" search of
// first_normal_form.py's create_bucket_combinations). It returns the
// lexicographically-first minimal combination plus every minimal
// combination found, so the caller can record the rest as alternatives.
func mapBuckets(c *catalog.Catalog, branch, project []string) (chosen []string, alternatives [][]string, err error) {
	sets := c.Sets()
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	sort.Strings(names)

	required := map[string]bool{}
	for _, n := range branch {
		required[n] = true
		// An association end named in the pattern also requires its
		// target class's identifier to be covered, since step 4's
		// loose-end projection (see synthesizeProjection) surfaces it
		// even when the target class itself is absent from branch.
		if end, ok := c.Atom(n); ok && end.Kind == catalog.KindAssociationEnd {
			if target, ok := c.Atom(end.AssociationEnd.Target); ok && target.Kind == catalog.KindClass && target.Class.Identifier != "" {
				required[target.Class.Identifier] = true
			}
		}
	}
	for _, n := range project {
		required[n] = true
	}

	covers := func(combo []string) bool {
		union := map[string]bool{}
		for _, name := range combo {
			for k := range setCoverage(c, name) {
				union[k] = true
			}
		}
		for need := range required {
			if !union[need] {
				return false
			}
		}
		return true
	}

	for size := 1; size <= len(names); size++ {
		var combos [][]string
		combinations(names, size, func(combo []string) {
			if covers(combo) {
				cp := append([]string(nil), combo...)
				sort.Strings(cp)
				combos = append(combos, cp)
			}
		})
		if len(combos) > 0 {
			sort.Slice(combos, func(i, j int) bool {
				return joinedName(combos[i]) < joinedName(combos[j])
			})
			return combos[0], combos, nil
		}
	}

	return nil, nil, fmt.Errorf("querytranslate: no combination of sets covers pattern %v with projection %v", branch, project)
}

func joinedName(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}

// combinations calls fn with every combination of size k drawn from
// items, in lexicographic index order.
func combinations(items []string, k int, fn func([]string)) {
	n := len(items)
	if k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]string, k)
		for i, v := range idx {
			combo[i] = items[v]
		}
		fn(combo)

		i := k - 1
		for i >= 0 && idx[i] == i+n-k {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// DisconnectedQueryError reports a chosen Set combination with no
// shared anchor class between a newly added set and the sets already
// joined, meaning the pattern has no relational path tying it together
// (spec.md §4.4 step 3 / failure kind `Disconnected`). Silently joining
// such sets would produce a cross join masquerading as a real result.
type DisconnectedQueryError struct {
	Combo []string
	Next  string
}

func (e *DisconnectedQueryError) Error() string {
	return fmt.Sprintf("querytranslate: set %q shares no anchor class with %v; pattern is disconnected (%s)", e.Next, e.Combo, diagnostics.CodeDisconnectedQuery)
}

// synthesizeJoins builds the FROM/JOIN chain for a chosen Set
// combination, joining on the first shared anchor class found between
// each newly added set and the sets already joined. The join predicate
// itself is paradigm-specific (spec.md §4.4 step 3): FLAT compares
// anchor-identifier columns directly; JSON_NESTED compares the same
// anchor key extracted from each side's JSONB document. It reports
// whether deduplication of an already-present table was required
// (SPEC_FULL.md open question (a): recorded as a warning upstream, never
// silently fixed by skipping it here), and fails with
// *DisconnectedQueryError rather than emitting an unconditional join
// predicate when no shared anchor exists.
func synthesizeJoins(c *catalog.Catalog, paradigm schemagen.Paradigm, combo []string) ([]joinClause, bool, error) {
	seen := map[string]bool{}
	var joins []joinClause
	dedupWarned := false

	for i, setName := range combo {
		if seen[setName] {
			dedupWarned = true
			continue
		}
		seen[setName] = true

		if i == 0 || len(joins) == 0 {
			joins = append(joins, joinClause{table: quoteTable(setName)})
			continue
		}

		onClass := sharedAnchorClass(c, combo[:i], setName)
		if onClass != "" {
			on := fmt.Sprintf("%s = %s", columnRef(paradigm, combo[0], onClass), columnRef(paradigm, setName, onClass))
			joins = append(joins, joinClause{table: quoteTable(setName), on: on})
			continue
		}

		if fkTable, fkColumn, refTable, refColumn, ok := foreignKeyAnchorJoin(c, combo[:i], setName); ok {
			on := fmt.Sprintf("%s = %s", columnRef(paradigm, fkTable, fkColumn), columnRef(paradigm, refTable, refColumn))
			joins = append(joins, joinClause{table: quoteTable(setName), on: on})
			continue
		}

		return nil, false, &DisconnectedQueryError{Combo: append([]string(nil), combo[:i]...), Next: setName}
	}
	if len(joins) == 0 {
		joins = append(joins, joinClause{table: quoteTable(combo[0])})
	}
	return joins, dedupWarned, nil
}

// columnRef qualifies attr with its owning table the way the chosen
// paradigm stores it: a plain column for FLAT, a JSONB path extraction
// for JSON_NESTED (spec.md §4.4 step 3's "anchor-identifier equality
// (FLAT) or document-key containment (JSON_NESTED)").
func columnRef(paradigm schemagen.Paradigm, table, attr string) string {
	if paradigm == schemagen.JSONNested {
		return fmt.Sprintf("(%s.value->>'%s')", quoteTable(table), attr)
	}
	return quoteTable(table) + "." + quoteIdentifier(attr)
}

func sharedAnchorClass(c *catalog.Catalog, already []string, next string) string {
	anchorsOf := func(setName string) map[string]bool {
		out := map[string]bool{}
		set, ok := c.Edge(setName)
		if !ok {
			return out
		}
		for _, structName := range set.Set.StructNames {
			st, ok := c.Edge(structName)
			if !ok {
				continue
			}
			for _, a := range st.Struct.Anchor {
				out[a] = true
			}
		}
		return out
	}

	nextAnchors := anchorsOf(next)
	for _, prev := range already {
		for a := range anchorsOf(prev) {
			if nextAnchors[a] {
				return a
			}
		}
	}
	return ""
}

// foreignKeyAnchorJoin looks for an association end, present as a
// member of one side's struct, whose target class matches the other
// side's anchor class - the same loose-end-as-foreign-key relationship
// internal/schemagen/flat.go's GenerateAddForeignKeys derives a FOREIGN
// KEY constraint from. Two sets with no shared anchor class can still be
// joinable this way, e.g. a Post set referencing a User set through a
// loose "author" end rather than sharing Post's own anchor. ok is false
// when neither direction finds such an end, meaning the sets really are
// disconnected.
func foreignKeyAnchorJoin(c *catalog.Catalog, already []string, next string) (fkTable, fkColumn, refTable, refColumn string, ok bool) {
	anchorClassesOf := func(setName string) map[string]bool {
		out := map[string]bool{}
		set, found := c.Edge(setName)
		if !found {
			return out
		}
		for _, structName := range set.Set.StructNames {
			st, found := c.Edge(structName)
			if !found {
				continue
			}
			for _, a := range st.Struct.Anchor {
				atom, found := c.Atom(a)
				if !found {
					continue
				}
				switch atom.Kind {
				case catalog.KindClass:
					out[atom.Class.Name] = true
				case catalog.KindAttribute:
					out[atom.Attribute.Owner] = true
				case catalog.KindAssociationEnd:
					out[atom.AssociationEnd.Target] = true
				}
			}
		}
		return out
	}
	endsOf := func(setName string) []struct{ member, target string } {
		var out []struct{ member, target string }
		set, found := c.Edge(setName)
		if !found {
			return out
		}
		for _, structName := range set.Set.StructNames {
			st, found := c.Edge(structName)
			if !found {
				continue
			}
			for _, member := range st.Struct.Members {
				atom, found := c.Atom(member)
				if !found || atom.Kind != catalog.KindAssociationEnd {
					continue
				}
				out = append(out, struct{ member, target string }{member, atom.AssociationEnd.Target})
			}
		}
		return out
	}
	identifierOf := func(className string) string {
		if atom, found := c.Atom(className); found && atom.Kind == catalog.KindClass {
			return atom.Class.Identifier
		}
		return ""
	}

	for _, prev := range already {
		prevAnchors := anchorClassesOf(prev)
		for _, end := range endsOf(next) {
			if prevAnchors[end.target] {
				if id := identifierOf(end.target); id != "" {
					return next, end.member, prev, id, true
				}
			}
		}
		nextAnchors := anchorClassesOf(next)
		for _, end := range endsOf(prev) {
			if nextAnchors[end.target] {
				if id := identifierOf(end.target); id != "" {
					return prev, end.member, next, id, true
				}
			}
		}
	}
	return "", "", "", "", false
}

func quoteTable(name string) string {
	return `"` + name + `"`
}
