package querytranslate

import "github.com/dorm-project/dorm/internal/catalog"

// expandGeneralizations replaces every pattern element that is the
// parent of a generalization with each of its leaf descendants,
// producing one branch per combination (the cartesian product of each
// element's options), matching first_normal_form.py's generate_sql
// recursive expansion via itertools.product. A multi-level hierarchy is
// walked all the way to its leaves, since an intermediate class in a
// generalization chain has no table of its own to translate against.
// An element that is not a generalization parent contributes a single-
// option branch: itself. No synthetic "none" branch is injected for a
// disjoint-and-incomplete generalization (SPEC_FULL.md open question
// (c)): only the declared children are considered.
func expandGeneralizations(c *catalog.Catalog, pattern []string) [][]string {
	options := make([][][]string, len(pattern))
	for i, name := range pattern {
		options[i] = elementOptions(c, name)
	}
	return cartesianProduct(options)
}

// elementOptions returns the branch-token groups a single pattern
// element expands to. A class that is itself a generalization parent
// expands to one group per leaf subclass. An association end whose
// target is a generalization parent propagates the same disjunction:
// each option keeps the end's own name (the loose-end projection and
// join logic downstream key off it) alongside the chosen leaf, so the
// leaf's table is pulled into the bucket search too. Anything else
// contributes a single group containing only itself.
func elementOptions(c *catalog.Catalog, name string) [][]string {
	if leaves := leafDescendants(c, name); len(leaves) > 0 {
		groups := make([][]string, len(leaves))
		for i, leaf := range leaves {
			groups[i] = []string{leaf}
		}
		return groups
	}
	if atom, ok := c.Atom(name); ok && atom.Kind == catalog.KindAssociationEnd {
		if leaves := leafDescendants(c, atom.AssociationEnd.Target); len(leaves) > 0 {
			groups := make([][]string, len(leaves))
			for i, leaf := range leaves {
				groups[i] = []string{name, leaf}
			}
			return groups
		}
	}
	return [][]string{{name}}
}

// leafDescendants walks a generalization chain to its leaves: children
// that are not themselves the parent of a further generalization. A
// class with no generalization below it returns no leaves, signaling
// "not a parent" to its caller.
func leafDescendants(c *catalog.Catalog, parent string) []string {
	children := directChildren(c, parent)
	if len(children) == 0 {
		return nil
	}
	var leaves []string
	for _, child := range children {
		if grandchildren := leafDescendants(c, child); len(grandchildren) == 0 {
			leaves = append(leaves, child)
		} else {
			leaves = append(leaves, grandchildren...)
		}
	}
	return leaves
}

func directChildren(c *catalog.Catalog, parent string) []string {
	var out []string
	for _, g := range c.Generalizations() {
		if g.Parent == parent {
			out = append(out, g.Children...)
		}
	}
	return out
}

// cartesianProduct builds one branch per combination of option groups,
// concatenating each chosen group's tokens onto the branch in order.
func cartesianProduct(options [][][]string) [][]string {
	if len(options) == 0 {
		return nil
	}
	result := [][]string{{}}
	for _, groups := range options {
		var next [][]string
		for _, prefix := range result {
			for _, group := range groups {
				branch := append(append([]string(nil), prefix...), group...)
				next = append(next, branch)
			}
		}
		result = next
	}
	return result
}
