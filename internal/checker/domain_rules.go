package checker

import (
	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/diagnostics"
)

// checkNamesUnique is largely enforced already by Catalog.addAtom/addEdge
// refusing duplicate registration, but Catalog.New permits edges and
// atoms to share a namespace collision the add-time check doesn't catch:
// an atom and an edge with the same name. IC-Generic1 forbids that too.
func checkNamesUnique(c *catalog.Catalog, bag *diagnostics.Bag) {
	atomNames := map[string]bool{}
	for _, a := range c.AllAtoms() {
		atomNames[a.Name()] = true
	}
	for _, e := range c.AllEdges() {
		if atomNames[e.Name()] {
			bag.Addf(diagnostics.CodeGenericNameUnique, "IC-Generic1", diagnostics.Error,
				[]string{e.Name()}, "name %q is used by both an atom and an edge", e.Name())
		}
	}
}

// checkDomainConnected enforces IC-Generic2: the underlying atom graph,
// with associations and generalizations as edges between classes, must
// be a single connected component.
func checkDomainConnected(c *catalog.Catalog, bag *diagnostics.Bag) {
	if !c.IsConnected() {
		bag.Addf(diagnostics.CodeGenericConnected, "IC-Generic2", diagnostics.Error,
			nil, "domain's class graph is not connected")
	}
}

func checkNamesNonEmpty(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, a := range c.AllAtoms() {
		if a.Name() == "" {
			bag.Addf(diagnostics.CodeGenericNameNonEmpty, "IC-Generic-nonempty", diagnostics.Error,
				nil, "%s atom has an empty name", a.Kind)
		}
	}
}

// checkAssociationArity enforces IC-Atoms7: an association is binary,
// exactly two ends (Catalog.AddAssociation only guards against fewer
// than two; an association with three or more ends still needs this
// rule to fire).
func checkAssociationArity(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, assoc := range c.Associations() {
		if len(assoc.Ends) != 2 {
			bag.Addf(diagnostics.CodeAssocEndArity, "IC-Atoms7", diagnostics.Error,
				[]string{assoc.Name}, "association %q has %d end(s), expected exactly 2", assoc.Name, len(assoc.Ends))
		}
	}
}

// checkAssociationEndRolesDistinct enforces the custom extension of
// IC-Atoms7/Definition 4: the two ends of a binary association must
// carry distinct role-names, so a query can address either side
// unambiguously (e.g. "writes.author" vs "writes.book").
func checkAssociationEndRolesDistinct(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, assoc := range c.Associations() {
		if len(assoc.Ends) != 2 {
			continue
		}
		var roles []string
		for _, endName := range assoc.Ends {
			if a, ok := c.Atom(endName); ok && a.Kind == catalog.KindAssociationEnd {
				roles = append(roles, a.AssociationEnd.Role)
			}
		}
		if len(roles) == 2 && roles[0] != "" && roles[0] == roles[1] {
			bag.Addf(diagnostics.CodeAssocEndRoleNotDistinct, "IC-Atoms-role-distinct", diagnostics.Error,
				[]string{assoc.Name, roles[0]}, "association %q has two ends sharing role-name %q", assoc.Name, roles[0])
		}
	}
}

// checkAttributeDistinctValuesBound enforces IC-Atoms5: an attribute's
// distinct-values count cannot exceed its owning class's cardinality.
func checkAttributeDistinctValuesBound(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, attr := range c.Attributes() {
		owner, ok := c.Atom(attr.Owner)
		if !ok || owner.Kind != catalog.KindClass {
			continue // IC-Atoms-dangling-attr reports this separately
		}
		if attr.DistinctValues > owner.Class.Cardinality {
			bag.Addf(diagnostics.CodeAttributeValuesBound, "IC-Atoms5", diagnostics.Error,
				[]string{attr.Name, attr.Owner},
				"attribute %q has %d distinct values, more than owning class %q's cardinality %d",
				attr.Name, attr.DistinctValues, attr.Owner, owner.Class.Cardinality)
		}
	}
}

// checkIdentifierDistinctValuesEqualCardinality enforces IC-Atoms8: an
// identifying attribute's distinct-values count must equal its owning
// class's cardinality exactly (every instance has a distinct value).
func checkIdentifierDistinctValuesEqualCardinality(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, attr := range c.Attributes() {
		if !attr.IsIdentifier {
			continue
		}
		owner, ok := c.Atom(attr.Owner)
		if !ok || owner.Kind != catalog.KindClass {
			continue
		}
		if attr.DistinctValues != owner.Class.Cardinality {
			bag.Addf(diagnostics.CodeIdentifierValuesEqual, "IC-Atoms8", diagnostics.Error,
				[]string{attr.Name, attr.Owner},
				"identifier %q has %d distinct values, expected to equal owning class %q's cardinality %d",
				attr.Name, attr.DistinctValues, attr.Owner, owner.Class.Cardinality)
		}
	}
}

// checkAtMostOneSuperclass enforces IC-Atoms9: a class cannot be the
// child of more than one generalization.
func checkAtMostOneSuperclass(c *catalog.Catalog, bag *diagnostics.Bag) {
	parents := map[string][]string{}
	for _, g := range c.Generalizations() {
		for _, child := range g.Children {
			parents[child] = append(parents[child], g.Parent)
		}
	}
	for child, supers := range parents {
		if len(supers) > 1 {
			bag.Addf(diagnostics.CodeMultipleSuperclasses, "IC-Atoms9", diagnostics.Error,
				append([]string{child}, supers...),
				"class %q has %d direct superclasses %v, expected at most 1", child, len(supers), supers)
		}
	}
}

// checkSubclassHasDiscriminantConstraint enforces IC-Atoms10: every
// generalization subclass must carry a discriminant constraint
// predicate, so query translation and schema generation can later tell
// siblings apart.
func checkSubclassHasDiscriminantConstraint(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, g := range c.Generalizations() {
		for _, child := range g.Children {
			if g.ConstraintFor(child) == "" {
				bag.Addf(diagnostics.CodeSubclassMissingConstr, "IC-Atoms10", diagnostics.Error,
					[]string{g.Name, child}, "generalization %q subclass %q has no discriminant constraint", g.Name, child)
			}
		}
	}
}

// checkClassIdentifiers enforces IC-Atoms13/14/15 together, since all
// three partition classes by the same generalization-membership test:
// a class is exactly one of standalone (outside any hierarchy), the top
// of a hierarchy, or a non-top subclass.
//
//   - IC-Atoms13: a standalone class must name exactly one identifying
//     attribute.
//   - IC-Atoms15: the top of a hierarchy must name exactly one
//     identifying attribute.
//   - IC-Atoms14: a non-top subclass must carry no identifier at all —
//     it inherits the top's.
func checkClassIdentifiers(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, cl := range c.Classes() {
		switch {
		case c.IsHierarchyChild(cl.Name):
			if hasOwnIdentifier(c, cl) {
				bag.Addf(diagnostics.CodeNonTopHasID, "IC-Atoms14", diagnostics.Error,
					[]string{cl.Name}, "class %q is not the top of its generalization hierarchy but carries an identifier", cl.Name)
			}
		case c.IsHierarchyTop(cl.Name):
			if !hasValidIdentifier(c, cl) {
				bag.Addf(diagnostics.CodeTopMissingID, "IC-Atoms15", diagnostics.Error,
					[]string{cl.Name}, "class %q is the top of a generalization hierarchy and must name exactly one identifying attribute", cl.Name)
			}
		default:
			if !hasValidIdentifier(c, cl) {
				bag.Addf(diagnostics.CodeStandaloneMissingID, "IC-Atoms13", diagnostics.Error,
					[]string{cl.Name}, "class %q does not belong to a generalization hierarchy and must name exactly one identifying attribute", cl.Name)
			}
		}
	}
}

// hasValidIdentifier reports whether cl names exactly one owned
// attribute flagged IsIdentifier, matching its Identifier field.
func hasValidIdentifier(c *catalog.Catalog, cl catalog.Class) bool {
	if cl.Identifier == "" {
		return false
	}
	count := 0
	named := false
	for _, attr := range c.AttributesOf(cl.Name) {
		if attr.IsIdentifier {
			count++
			if attr.Name == cl.Identifier {
				named = true
			}
		}
	}
	return named && count == 1
}

// hasOwnIdentifier reports whether cl names or owns any identifying
// attribute at all, used to reject identifiers on non-top subclasses.
func hasOwnIdentifier(c *catalog.Catalog, cl catalog.Class) bool {
	if cl.Identifier != "" {
		return true
	}
	for _, attr := range c.AttributesOf(cl.Name) {
		if attr.IsIdentifier {
			return true
		}
	}
	return false
}

func checkNoGeneralizationCycle(c *catalog.Catalog, bag *diagnostics.Bag) {
	if c.HasGeneralizationCycle() {
		bag.Addf(diagnostics.CodeGeneralizationCycle, "IC-Atoms-cycle", diagnostics.Error,
			nil, "generalization graph contains a cycle")
	}
}

func checkAttributeOwnerExists(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, attr := range c.Attributes() {
		owner, ok := c.Atom(attr.Owner)
		if !ok || owner.Kind != catalog.KindClass {
			bag.Addf(diagnostics.CodeMalformedRef, "IC-Atoms-dangling-attr", diagnostics.Error,
				[]string{attr.Name, attr.Owner}, "attribute %q names owner %q, which is not a registered class", attr.Name, attr.Owner)
		}
	}
}

func checkAssociationEndTargetExists(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, end := range c.AssociationEnds() {
		target, ok := c.Atom(end.Target)
		if !ok || target.Kind != catalog.KindClass {
			bag.Addf(diagnostics.CodeMalformedRef, "IC-Atoms-dangling-end", diagnostics.Error,
				[]string{end.Name, end.Target}, "association end %q targets %q, which is not a registered class", end.Name, end.Target)
		}
	}
	for _, assoc := range c.Associations() {
		for _, endName := range assoc.Ends {
			end, ok := c.Atom(endName)
			if !ok || end.Kind != catalog.KindAssociationEnd {
				bag.Addf(diagnostics.CodeMalformedRef, "IC-Atoms-dangling-end", diagnostics.Error,
					[]string{assoc.Name, endName}, "association %q names end %q, which is not a registered association end", assoc.Name, endName)
			}
		}
	}
}

func checkGeneralizationReferencesExist(c *catalog.Catalog, bag *diagnostics.Bag) {
	for _, g := range c.Generalizations() {
		if parent, ok := c.Atom(g.Parent); !ok || parent.Kind != catalog.KindClass {
			bag.Addf(diagnostics.CodeMalformedRef, "IC-Atoms-dangling-gen", diagnostics.Error,
				[]string{g.Name, g.Parent}, "generalization %q names parent %q, which is not a registered class", g.Name, g.Parent)
		}
		for _, childName := range g.Children {
			if child, ok := c.Atom(childName); !ok || child.Kind != catalog.KindClass {
				bag.Addf(diagnostics.CodeMalformedRef, "IC-Atoms-dangling-gen", diagnostics.Error,
					[]string{g.Name, childName}, "generalization %q names child %q, which is not a registered class", g.Name, childName)
			}
		}
	}
}
