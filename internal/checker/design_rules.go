package checker

import (
	"regexp"
	"sort"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/diagnostics"
)

func checkStructAnchorNonEmpty(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		if len(s.Anchor) == 0 {
			bag.Addf(diagnostics.CodeStructAnchorMissing, "IC-Structs1", diagnostics.Error,
				[]string{s.Name}, "struct %q does not declare an anchor", s.Name)
		}
	}
}

// checkStructMembersExist is a basic dangling-reference check, not a
// numbered invariant of its own (the real IC-Structs-b is the
// unique-path-to-anchor requirement; see checkStructUniquePathToAnchor).
func checkStructMembersExist(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		for _, member := range s.Members {
			if c.AtomExists(member) {
				continue
			}
			if e, ok := c.Edge(member); ok && e.Kind == catalog.KindSet {
				continue // nested Set member: an embedded array field, see checkSetNestingDepth
			}
			bag.Addf(diagnostics.CodeStructDangling, "IC-Structs-dangling-member", diagnostics.Error,
				[]string{s.Name, member}, "struct %q names member %q, which is not a registered atom or set", s.Name, member)
		}
	}
}

func checkStructAnchorSubsetOfMembers(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		members := map[string]bool{}
		for _, m := range s.Members {
			members[m] = true
		}
		for _, a := range s.Anchor {
			if !members[a] {
				bag.Addf(diagnostics.CodeStructDangling, "IC-Structs-c", diagnostics.Error,
					[]string{s.Name, a}, "struct %q names anchor member %q, which is not among its members", s.Name, a)
			}
		}
	}
}

func checkSetNonEmpty(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Sets() {
		if len(s.StructNames) == 0 {
			bag.Addf(diagnostics.CodeSetEmpty, "IC-Sets1", diagnostics.Error,
				[]string{s.Name}, "set %q does not reference any struct", s.Name)
		}
	}
}

func checkSetStructsExist(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Sets() {
		for _, structName := range s.StructNames {
			if !c.EdgeExists(structName) {
				bag.Addf(diagnostics.CodeMalformedRef, "IC-Sets2", diagnostics.Error,
					[]string{s.Name, structName}, "set %q names struct %q, which is not registered", s.Name, structName)
			}
		}
	}
}

// checkSetStructsShareAnchorShape enforces IC-Design4: every struct
// packed into the same set must share the same anchor attribute names,
// since the set's primary key is derived from exactly one of them (the
// Schema Generator and Migration Planner both assume this).
func checkSetStructsShareAnchorShape(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Sets() {
		var firstAnchor []string
		var firstStruct string
		for _, structName := range s.StructNames {
			st, ok := c.Edge(structName)
			if !ok || st.Kind != catalog.KindStruct {
				continue
			}
			anchor := append([]string(nil), st.Struct.Anchor...)
			sort.Strings(anchor)
			if firstAnchor == nil {
				firstAnchor = anchor
				firstStruct = structName
				continue
			}
			if !equalStrings(firstAnchor, anchor) {
				bag.Addf(diagnostics.CodeSetAnchorMismatch, "IC-Design4", diagnostics.Error,
					[]string{s.Name, firstStruct, structName},
					"set %q packs struct %q (anchor %v) with struct %q (anchor %v), which do not share an anchor shape",
					s.Name, firstStruct, firstAnchor, structName, anchor)
			}
		}
	}
}

// checkSetSiblingDiscriminator enforces the disjoint-siblings
// discriminator: when a Set packs more than one Struct, those structs
// stand for classes related via generalization (IC-Design4 already
// requires them to share an anchor shape), so the Set must name a
// Discriminant attribute or a query has no way to tell its rows apart
// (spec.md §8 "Discriminator required").
func checkSetSiblingDiscriminator(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Sets() {
		if len(s.StructNames) > 1 && s.Discriminant == "" {
			bag.Addf(diagnostics.CodeSetMissingDiscriminator, "IC-Design-discriminator", diagnostics.Error,
				[]string{s.Name}, "set %q packs %d structs sharing an anchor shape but names no discriminant attribute", s.Name, len(s.StructNames))
		}
	}
}

// checkSetContentsKind enforces the literal half of "a Set contains only
// Structs or a single Class, never directly another Set": a Set's
// StructNames entries must resolve to Struct edges, not Set edges.
func checkSetContentsKind(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Sets() {
		for _, structName := range s.StructNames {
			if e, ok := c.Edge(structName); ok && e.Kind == catalog.KindSet {
				bag.Addf(diagnostics.CodeSetContainsSetDirectly, "IC-Design-nesting-direct", diagnostics.Error,
					[]string{s.Name, structName}, "set %q directly contains set %q; a set may only contain structs or a single class", s.Name, structName)
			}
		}
	}
}

// checkSetNestingDepth enforces the other half: nested Sets embedded as
// array fields inside a Struct (see checkStructMembersExist) may go one
// level deep at most (spec.md §4.3/§8 "Unsupported nesting"). A Set at
// depth 0 referencing a Struct whose members embed a Set at depth 1 is
// fine; a Set embedded inside that Set's own structs pushes depth to 2
// and must be rejected.
func checkSetNestingDepth(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Sets() {
		if depth := nestedSetDepth(c, s.Name, map[string]bool{}); depth > 1 {
			bag.Addf(diagnostics.CodeSetNestingTooDeep, "IC-Design-nesting-depth", diagnostics.Error,
				[]string{s.Name}, "set %q nests sets %d levels deep, exceeding the maximum of 1", s.Name, depth)
		}
	}
}

// nestedSetDepth returns the deepest Set->Struct->Set chain reachable
// below setName, 0 if none of its structs embed a nested Set. seen guards
// against a cycle of Set/Struct references turning this into an infinite
// recursion.
func nestedSetDepth(c *catalog.Catalog, setName string, seen map[string]bool) int {
	if seen[setName] {
		return 0
	}
	seen[setName] = true

	e, ok := c.Edge(setName)
	if !ok || e.Kind != catalog.KindSet {
		return 0
	}

	max := 0
	for _, structName := range e.Set.StructNames {
		st, ok := c.Edge(structName)
		if !ok {
			continue
		}
		if st.Kind == catalog.KindSet {
			if d := 1 + nestedSetDepth(c, structName, seen); d > max {
				max = d
			}
			continue
		}
		for _, member := range st.Struct.Members {
			if me, ok := c.Edge(member); ok && me.Kind == catalog.KindSet {
				if d := 1 + nestedSetDepth(c, member, seen); d > max {
					max = d
				}
			}
		}
	}
	return max
}

// anchorClasses resolves a struct's Anchor entries to the classes they
// sit on: a class member resolves to itself, an attribute to its owner,
// an association end to its target.
func anchorClasses(c *catalog.Catalog, s catalog.Struct) map[string]bool {
	out := map[string]bool{}
	for _, a := range s.Anchor {
		atom, ok := c.Atom(a)
		if !ok {
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
	return out
}

// memberClasses returns the classes a struct references directly as a
// Member (not merely through owning an attribute member).
func memberClasses(c *catalog.Catalog, s catalog.Struct) map[string]bool {
	out := map[string]bool{}
	for _, m := range s.Members {
		if a, ok := c.Atom(m); ok && a.Kind == catalog.KindClass {
			out[a.Class.Name] = true
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// superclassChain walks Catalog.Superclass from className to the top of
// its generalization hierarchy, className excluded.
func superclassChain(c *catalog.Catalog, className string) []string {
	var chain []string
	seen := map[string]bool{className: true}
	cur := className
	for {
		parent, ok := c.Superclass(cur)
		if !ok || seen[parent] {
			return chain
		}
		chain = append(chain, parent)
		seen[parent] = true
		cur = parent
	}
}

// generalizationNamed returns the Generalization relating parent to
// child, if one is registered.
func generalizationNamed(c *catalog.Catalog, parent, child string) (catalog.Generalization, bool) {
	for _, g := range c.Generalizations() {
		if g.Parent != parent {
			continue
		}
		for _, ch := range g.Children {
			if ch == child {
				return g, true
			}
		}
	}
	return catalog.Generalization{}, false
}

var predicateIdentifierPattern = regexp.MustCompile(`'[^']*'|[A-Za-z_][A-Za-z0-9_]*`)

// predicateAttributeNames extracts the bare identifiers referenced by a
// discriminant constraint predicate (e.g. "kind = 'student'" yields
// ["kind"]), the same pragmatic token scan querytranslate's filter
// translator uses rather than a full SQL expression parser.
func predicateAttributeNames(predicate string) []string {
	if predicate == "" {
		return nil
	}
	var out []string
	for _, token := range predicateIdentifierPattern.FindAllString(predicate, -1) {
		if token[0] != '\'' {
			out = append(out, token)
		}
	}
	return out
}

// checkStructAnchorConnected enforces IC-Structs5: when a struct's
// anchor spans more than one class, those classes must be linked by an
// association that is itself part of the anchor, or the anchor has no
// single key to join the struct's rows on.
func checkStructAnchorConnected(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		classes := anchorClasses(c, s)
		if len(classes) <= 1 {
			continue
		}
		anchorMembers := map[string]bool{}
		for _, a := range s.Anchor {
			anchorMembers[a] = true
		}

		adj := map[string][]string{}
		for _, assoc := range c.Associations() {
			if len(assoc.Ends) != 2 || !anchorMembers[assoc.Ends[0]] || !anchorMembers[assoc.Ends[1]] {
				continue
			}
			var ends []catalog.AssociationEnd
			for _, endName := range assoc.Ends {
				if a, ok := c.Atom(endName); ok && a.Kind == catalog.KindAssociationEnd {
					ends = append(ends, a.AssociationEnd)
				}
			}
			if len(ends) != 2 {
				continue
			}
			adj[ends[0].Target] = append(adj[ends[0].Target], ends[1].Target)
			adj[ends[1].Target] = append(adj[ends[1].Target], ends[0].Target)
		}

		names := sortedKeys(classes)
		seen := map[string]bool{names[0]: true}
		queue := []string{names[0]}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if classes[next] && !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		if len(seen) != len(classes) {
			bag.Addf(diagnostics.CodeStructAnchorDisconnected, "IC-Structs5", diagnostics.Error,
				append([]string{s.Name}, names...),
				"struct %q's anchor classes %v are not all connected by an association that is itself part of the anchor", s.Name, names)
		}
	}
}

// checkStructNoAncestorDescendantPair enforces IC-Structs6: a struct
// cannot directly reference both a class and its (possibly transitive)
// superclass, since both would otherwise contribute the same inherited
// attributes under ambiguous names.
func checkStructNoAncestorDescendantPair(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		classes := memberClasses(c, s)
		for _, name := range sortedKeys(classes) {
			for _, ancestor := range superclassChain(c, name) {
				if classes[ancestor] {
					bag.Addf(diagnostics.CodeStructAncestorDescendant, "IC-Structs6", diagnostics.Error,
						[]string{s.Name, name, ancestor},
						"struct %q contains both class %q and its superclass %q", s.Name, name, ancestor)
				}
			}
		}
	}
}

// checkStructAnchorEndsStayLoose enforces IC-Structs7: an association
// end that anchors a struct must remain a loose end (a bare foreign-key
// reference) for the whole struct; embedding its target's attributes
// elsewhere in the same struct would mean the anchor no longer
// identifies a single row.
func checkStructAnchorEndsStayLoose(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		memberSet := map[string]bool{}
		for _, m := range s.Members {
			memberSet[m] = true
		}
		for _, a := range s.Anchor {
			atom, ok := c.Atom(a)
			if !ok || atom.Kind != catalog.KindAssociationEnd {
				continue
			}
			target := atom.AssociationEnd.Target
			for _, attr := range c.AttributesOf(target) {
				if memberSet[attr.Name] {
					bag.Addf(diagnostics.CodeStructAnchorEndNotLoose, "IC-Structs7", diagnostics.Error,
						[]string{s.Name, a, attr.Name},
						"struct %q anchors on association end %q, but also embeds its target's attribute %q, so %q is no longer a loose end",
						s.Name, a, attr.Name, a)
					break
				}
			}
		}
	}
}

// checkStructSiblingsNeedDiscriminant enforces IC-Structs8: if a struct
// packs two sibling classes from the same generalization, it must also
// name an attribute referenced by their discriminant constraint, or
// there is no way to tell which subclass a given row belongs to.
func checkStructSiblingsNeedDiscriminant(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		memberSet := map[string]bool{}
		for _, m := range s.Members {
			memberSet[m] = true
		}
		classes := sortedKeys(memberClasses(c, s))
		for i, a := range classes {
			parentA, ok := c.Superclass(a)
			if !ok {
				continue
			}
			for _, b := range classes[i+1:] {
				parentB, ok := c.Superclass(b)
				if !ok || parentA != parentB {
					continue
				}
				g, ok := generalizationNamed(c, parentA, a)
				if !ok {
					continue
				}
				needed := predicateAttributeNames(g.ConstraintFor(a))
				satisfied := len(needed) == 0
				for _, n := range needed {
					if memberSet[n] {
						satisfied = true
						break
					}
				}
				if !satisfied {
					bag.Addf(diagnostics.CodeStructSiblingNeedsDiscriminant, "IC-Structs8", diagnostics.Error,
						[]string{s.Name, a, b, g.Name},
						"struct %q packs sibling classes %q and %q from generalization %q but names no discriminant attribute",
						s.Name, a, b, g.Name)
				}
			}
		}
	}
}

// checkStructUniquePathToAnchor enforces the real IC-Structs-b
// (Definition 7-b): every member a struct names must reach the anchor
// by exactly one simple association path, via Catalog.StructPathToAnchor.
// More than one path makes the attribute's meaning ambiguous; the code
// that used to carry this label only checked member existence (see
// checkStructMembersExist).
func checkStructUniquePathToAnchor(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, s := range c.Structs() {
		for _, member := range s.Members {
			if _, paths := c.StructPathToAnchor(s.Name, member); paths > 1 {
				bag.Addf(diagnostics.CodeStructAmbiguousPath, "IC-Structs-b", diagnostics.Error,
					[]string{s.Name, member},
					"struct %q member %q reaches the anchor by %d distinct association paths, which is ambiguous", s.Name, member, paths)
			}
		}
	}
}

// checkEveryAtomInSomeSet enforces IC-Design2: every attribute and
// association end in the domain must be transitively reachable from at
// least one Set, or it can never be read or written through any
// generated table.
func checkEveryAtomInSomeSet(c *catalog.Catalog, bag *diagnostics.Bag) {
	covered := map[string]bool{}
	for _, set := range c.Sets() {
		for _, structName := range set.StructNames {
			for _, name := range c.StructPath(structName) {
				covered[name] = true
			}
			if st, ok := c.Edge(structName); ok && st.Kind == catalog.KindStruct {
				for _, m := range st.Struct.Members {
					covered[m] = true
				}
			}
		}
	}
	for _, attr := range c.Attributes() {
		if !covered[attr.Name] {
			bag.Addf(diagnostics.CodeAtomNotInSet, "IC-Design2", diagnostics.Error,
				[]string{attr.Name}, "attribute %q is not transitively reachable from any set", attr.Name)
		}
	}
	for _, end := range c.AssociationEnds() {
		if !covered[end.Name] {
			bag.Addf(diagnostics.CodeAtomNotInSet, "IC-Design2", diagnostics.Error,
				[]string{end.Name}, "association end %q is not transitively reachable from any set", end.Name)
		}
	}
}

// checkEveryAtomInSomeStruct enforces IC-Design3: every class,
// attribute, and association end should belong to at least one struct.
// The original only warns here (it comments out the correct=False that
// would make this a hard failure), so this rule reports Warning, not
// Error.
func checkEveryAtomInSomeStruct(c *catalog.Catalog, bag *diagnostics.Bag) {
	covered := map[string]bool{}
	for _, st := range c.Structs() {
		for _, m := range st.Members {
			covered[m] = true
		}
	}
	for _, cl := range c.Classes() {
		if !covered[cl.Name] {
			bag.Addf(diagnostics.CodeAtomNotInStruct, "IC-Design3", diagnostics.Warning,
				[]string{cl.Name}, "class %q does not belong to any struct", cl.Name)
		}
	}
	for _, attr := range c.Attributes() {
		if !covered[attr.Name] {
			bag.Addf(diagnostics.CodeAtomNotInStruct, "IC-Design3", diagnostics.Warning,
				[]string{attr.Name}, "attribute %q does not belong to any struct", attr.Name)
		}
	}
	for _, end := range c.AssociationEnds() {
		if !covered[end.Name] {
			bag.Addf(diagnostics.CodeAtomNotInStruct, "IC-Design3", diagnostics.Warning,
				[]string{end.Name}, "association end %q does not belong to any struct", end.Name)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
