package catalog

import "sort"

// GeneralizationClosure returns every class name reachable from
// className by following child edges of Generalizations rooted at or
// below it, className included. The result is sorted for determinism.
func (c *Catalog) GeneralizationClosure(className string) []string {
	byParent := make(map[string][]string)
	for _, g := range c.Generalizations() {
		byParent[g.Parent] = append(byParent[g.Parent], g.Children...)
	}

	seen := map[string]bool{className: true}
	queue := []string{className}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range byParent[cur] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Siblings returns every class that shares an immediate parent
// generalization with className, className excluded. Sorted for
// determinism.
func (c *Catalog) Siblings(className string) []string {
	var out []string
	for _, g := range c.Generalizations() {
		found := false
		for _, child := range g.Children {
			if child == className {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		for _, child := range g.Children {
			if child != className {
				out = append(out, child)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Superclass returns the direct parent of className in a generalization
// hierarchy, if it's a subclass anywhere, and whether one was found.
func (c *Catalog) Superclass(className string) (string, bool) {
	for _, g := range c.Generalizations() {
		for _, child := range g.Children {
			if child == className {
				return g.Parent, true
			}
		}
	}
	return "", false
}

// IsHierarchyChild reports whether className is a subclass in some
// generalization (appears in a Children list).
func (c *Catalog) IsHierarchyChild(className string) bool {
	_, ok := c.Superclass(className)
	return ok
}

// IsHierarchyParent reports whether className is the Parent of some
// generalization.
func (c *Catalog) IsHierarchyParent(className string) bool {
	for _, g := range c.Generalizations() {
		if g.Parent == className {
			return true
		}
	}
	return false
}

// IsHierarchyTop reports whether className is the root of a
// generalization hierarchy: it has subclasses of its own but is not
// itself a subclass of anything (spec.md §3's "top of every
// generalization").
func (c *Catalog) IsHierarchyTop(className string) bool {
	return c.IsHierarchyParent(className) && !c.IsHierarchyChild(className)
}

// HasGeneralizationCycle reports whether the generalization graph
// contains a cycle, using the same DFS-with-recursion-stack technique as
// internal/orm/schema/relationships.go's DetectCycles.
func (c *Catalog) HasGeneralizationCycle() bool {
	byParent := make(map[string][]string)
	for _, g := range c.Generalizations() {
		byParent[g.Parent] = append(byParent[g.Parent], g.Children...)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, next := range byParent[node] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	roots := make([]string, 0, len(byParent))
	for root := range byParent {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	for _, root := range roots {
		if color[root] == white {
			if visit(root) {
				return true
			}
		}
	}
	return false
}

// IsConnected reports whether every Class in the domain is reachable
// from every other Class via associations and generalization links
// (IC-Generic2). A domain with zero or one class is trivially connected.
func (c *Catalog) IsConnected() bool {
	classes := c.Classes()
	if len(classes) <= 1 {
		return true
	}

	adj := make(map[string][]string)
	link := func(a, b string) {
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	for _, assoc := range c.Associations() {
		var targets []string
		for _, endName := range assoc.Ends {
			if a, ok := c.Atom(endName); ok && a.Kind == KindAssociationEnd {
				targets = append(targets, a.AssociationEnd.Target)
			}
		}
		for i, a := range targets {
			for j, b := range targets {
				if i != j {
					link(a, b)
				}
			}
		}
	}
	for _, g := range c.Generalizations() {
		for _, child := range g.Children {
			link(g.Parent, child)
		}
	}

	seen := map[string]bool{classes[0].Name: true}
	queue := []string{classes[0].Name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(seen) == len(classes)
}

// DomainPath is one path connecting two classes through a chain of
// associations or generalizations.
type DomainPath struct {
	Hops []string // names of Association/Generalization atoms traversed, in order
}

// DomainPaths enumerates every simple path from `from` to `to` through
// the domain's associations and generalizations, shortest first and,
// within a length, ordered lexicographically by the hyperedge names
// traversed (the normative tie-break: spec.md §4.1 decides ties this
// way, not arbitrarily).
func (c *Catalog) DomainPaths(from, to string) []DomainPath {
	type hop struct {
		edgeName string
		next     string
	}
	adj := make(map[string][]hop)

	for _, assoc := range c.Associations() {
		ends := make([]AssociationEnd, 0, len(assoc.Ends))
		for _, endName := range assoc.Ends {
			if a, ok := c.Atom(endName); ok && a.Kind == KindAssociationEnd {
				ends = append(ends, a.AssociationEnd)
			}
		}
		for i, a := range ends {
			for j, b := range ends {
				if i == j {
					continue
				}
				adj[a.Target] = append(adj[a.Target], hop{edgeName: assoc.Name, next: b.Target})
			}
		}
	}
	for _, g := range c.Generalizations() {
		for _, child := range g.Children {
			adj[g.Parent] = append(adj[g.Parent], hop{edgeName: g.Name, next: child})
			adj[child] = append(adj[child], hop{edgeName: g.Name, next: g.Parent})
		}
	}

	var results []DomainPath
	var dfs func(node string, path []string, visited map[string]bool)
	dfs = func(node string, path []string, visited map[string]bool) {
		if node == to && len(path) > 0 {
			cp := make([]string, len(path))
			copy(cp, path)
			results = append(results, DomainPath{Hops: cp})
			return
		}
		hops := append([]hop(nil), adj[node]...)
		sort.Slice(hops, func(i, j int) bool { return hops[i].edgeName < hops[j].edgeName })
		for _, h := range hops {
			if visited[h.next] {
				continue
			}
			visited[h.next] = true
			dfs(h.next, append(path, h.edgeName), visited)
			visited[h.next] = false
		}
	}
	dfs(from, nil, map[string]bool{from: true})

	sort.SliceStable(results, func(i, j int) bool {
		if len(results[i].Hops) != len(results[j].Hops) {
			return len(results[i].Hops) < len(results[j].Hops)
		}
		for k := range results[i].Hops {
			if results[i].Hops[k] != results[j].Hops[k] {
				return results[i].Hops[k] < results[j].Hops[k]
			}
		}
		return false
	})
	return results
}

// StructPath returns the names of every atom a Struct transitively
// depends on: its declared members plus, for each member that is a
// Class, that class's attributes.
func (c *Catalog) StructPath(structName string) []string {
	s, ok := c.Edge(structName)
	if !ok || s.Kind != KindStruct {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, member := range s.Struct.Members {
		add(member)
		if a, ok := c.Atom(member); ok && a.Kind == KindClass {
			for _, attr := range c.AttributesOf(a.Class.Name) {
				add(attr.Name)
			}
		}
	}
	return out
}

// StructPathToAnchor implements spec.md §4.1's struct_path(struct, x)
// primitive: the sequence of association-end names connecting x to
// structName's anchor, restricted to associations whose two ends are
// both members of the struct. No association is removed from that
// subgraph, anchor associations included; the simple paths are then
// walked through the resulting class/association-end graph (catalog.py's
// IC-Structs-b check). It returns the shortest such path plus the total
// number of distinct simple paths found; a caller enforcing Definition
// 7-b's uniqueness requirement rejects anything other than exactly one.
func (c *Catalog) StructPathToAnchor(structName, x string) (path []string, pathCount int) {
	e, ok := c.Edge(structName)
	if !ok || e.Kind != KindStruct {
		return nil, 0
	}
	st := e.Struct

	classOf := func(name string) (string, bool) {
		a, ok := c.Atom(name)
		if !ok {
			return "", false
		}
		switch a.Kind {
		case KindClass:
			return a.Class.Name, true
		case KindAttribute:
			return a.Attribute.Owner, true
		}
		return "", false
	}

	targetClass, ok := classOf(x)
	if !ok {
		return nil, 0
	}

	anchorClasses := map[string]bool{}
	for _, a := range st.Anchor {
		if cl, ok := classOf(a); ok {
			anchorClasses[cl] = true
		}
	}
	if anchorClasses[targetClass] {
		return nil, 1
	}

	memberSet := map[string]bool{}
	for _, m := range st.Members {
		memberSet[m] = true
	}

	type hop struct {
		edgeName string
		next     string
	}
	adj := make(map[string][]hop)
	for _, assoc := range c.Associations() {
		if len(assoc.Ends) != 2 || !memberSet[assoc.Ends[0]] || !memberSet[assoc.Ends[1]] {
			continue
		}
		var ends []AssociationEnd
		for _, endName := range assoc.Ends {
			if a, ok := c.Atom(endName); ok && a.Kind == KindAssociationEnd {
				ends = append(ends, a.AssociationEnd)
			}
		}
		if len(ends) != 2 {
			continue
		}
		adj[ends[0].Target] = append(adj[ends[0].Target], hop{edgeName: assoc.Ends[0], next: ends[1].Target})
		adj[ends[1].Target] = append(adj[ends[1].Target], hop{edgeName: assoc.Ends[1], next: ends[0].Target})
	}

	var found [][]string
	var dfs func(node string, path []string, visited map[string]bool)
	dfs = func(node string, path []string, visited map[string]bool) {
		if node == targetClass && len(path) > 0 {
			found = append(found, append([]string(nil), path...))
			return
		}
		for _, h := range adj[node] {
			if visited[h.next] {
				continue
			}
			visited[h.next] = true
			dfs(h.next, append(path, h.edgeName), visited)
			visited[h.next] = false
		}
	}

	anchors := make([]string, 0, len(anchorClasses))
	for cl := range anchorClasses {
		anchors = append(anchors, cl)
	}
	sort.Strings(anchors)
	for _, anchor := range anchors {
		dfs(anchor, nil, map[string]bool{anchor: true})
	}

	if len(found) == 0 {
		return nil, 0
	}
	sort.Slice(found, func(i, j int) bool { return len(found[i]) < len(found[j]) })
	return found[0], len(found)
}

// SetsContaining returns the names of every Set that references the
// given struct, sorted for determinism.
func (c *Catalog) SetsContaining(structName string) []string {
	var out []string
	for _, s := range c.Sets() {
		for _, sn := range s.StructNames {
			if sn == structName {
				out = append(out, s.Name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// SetDependencyOrder returns Set names ordered so that a Set referencing
// another Set's anchor (via a shared class in an anchor position) never
// precedes what it depends on, using Kahn's algorithm exactly as
// internal/orm/schema/relationships.go's TopologicalSort does.
func (c *Catalog) SetDependencyOrder() ([]string, error) {
	sets := c.Sets()
	inDegree := make(map[string]int, len(sets))
	dependents := make(map[string][]string)

	structToSets := make(map[string][]string)
	for _, s := range sets {
		inDegree[s.Name] = 0
	}
	for _, s := range sets {
		for _, structName := range s.StructNames {
			structToSets[structName] = append(structToSets[structName], s.Name)
		}
	}

	for _, s := range sets {
		for _, structName := range s.StructNames {
			st, ok := c.Edge(structName)
			if !ok {
				continue
			}
			for _, member := range st.Struct.Anchor {
				a, ok := c.Atom(member)
				if !ok || a.Kind != KindClass {
					continue
				}
				for _, depStructName := range structsContainingClass(c, a.Class.Name) {
					if depStructName == structName {
						continue
					}
					for _, depSetName := range structToSets[depStructName] {
						if depSetName == s.Name {
							continue
						}
						dependents[depSetName] = append(dependents[depSetName], s.Name)
						inDegree[s.Name]++
					}
				}
			}
		}
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		sort.Strings(queue)
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for _, next := range dependents[cur] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(sets) {
		return nil, errCycle
	}
	return order, nil
}

func structsContainingClass(c *Catalog, className string) []string {
	var out []string
	for _, s := range c.Structs() {
		for _, m := range s.Members {
			if m == className {
				out = append(out, s.Name)
				break
			}
		}
	}
	return out
}

var errCycle = errCyclicSetDependency{}

type errCyclicSetDependency struct{}

func (errCyclicSetDependency) Error() string {
	return "catalog: set dependency graph contains a cycle"
}
