// Package checker implements the catalog's invariant checks as a
// collection of independent, named predicate rules folded over the
// catalog in a single pass. Every rule runs regardless of whether an
// earlier one found a violation, so a single Check call surfaces the
// complete set of problems rather than stopping at the first one.
package checker

import (
	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/diagnostics"
)

// Rule is a single named invariant predicate. It inspects the catalog
// and appends zero or more diagnostics to bag.
type Rule struct {
	Name string
	Run  func(c *catalog.Catalog, bag *diagnostics.Bag)
}

// domainRules enumerates the invariants that apply to a domain alone
// (catalog.py's IC-Generic / IC-Atoms rules).
var domainRules = []Rule{
	{Name: "IC-Generic1", Run: checkNamesUnique},
	{Name: "IC-Generic2", Run: checkDomainConnected},
	{Name: "IC-Generic-nonempty", Run: checkNamesNonEmpty},
	{Name: "IC-Atoms5", Run: checkAttributeDistinctValuesBound},
	{Name: "IC-Atoms7", Run: checkAssociationArity},
	{Name: "IC-Atoms8", Run: checkIdentifierDistinctValuesEqualCardinality},
	{Name: "IC-Atoms9", Run: checkAtMostOneSuperclass},
	{Name: "IC-Atoms10", Run: checkSubclassHasDiscriminantConstraint},
	{Name: "IC-Atoms-role-distinct", Run: checkAssociationEndRolesDistinct},
	{Name: "IC-Atoms13/14/15", Run: checkClassIdentifiers},
	{Name: "IC-Atoms-cycle", Run: checkNoGeneralizationCycle},
	{Name: "IC-Atoms-dangling-attr", Run: checkAttributeOwnerExists},
	{Name: "IC-Atoms-dangling-end", Run: checkAssociationEndTargetExists},
	{Name: "IC-Atoms-dangling-gen", Run: checkGeneralizationReferencesExist},
}

// designRules enumerates the invariants that apply once structs and
// sets have been layered on top of a domain (catalog.py's IC-Structs /
// IC-Sets / IC-Design rules).
var designRules = []Rule{
	{Name: "IC-Structs1", Run: checkStructAnchorNonEmpty},
	{Name: "IC-Structs-dangling-member", Run: checkStructMembersExist},
	{Name: "IC-Structs-c", Run: checkStructAnchorSubsetOfMembers},
	{Name: "IC-Structs5", Run: checkStructAnchorConnected},
	{Name: "IC-Structs6", Run: checkStructNoAncestorDescendantPair},
	{Name: "IC-Structs7", Run: checkStructAnchorEndsStayLoose},
	{Name: "IC-Structs8", Run: checkStructSiblingsNeedDiscriminant},
	{Name: "IC-Structs-b", Run: checkStructUniquePathToAnchor},
	{Name: "IC-Sets1", Run: checkSetNonEmpty},
	{Name: "IC-Sets2", Run: checkSetStructsExist},
	{Name: "IC-Design2", Run: checkEveryAtomInSomeSet},
	{Name: "IC-Design3", Run: checkEveryAtomInSomeStruct},
	{Name: "IC-Design4", Run: checkSetStructsShareAnchorShape},
	{Name: "IC-Design-discriminator", Run: checkSetSiblingDiscriminator},
	{Name: "IC-Design-nesting-direct", Run: checkSetContentsKind},
	{Name: "IC-Design-nesting-depth", Run: checkSetNestingDepth},
}

// resolveLogger returns the first non-nil logger passed, or a no-op
// logger when none was given. log is variadic so every existing caller
// keeps compiling unchanged; cmd/dormctl is the one caller that opts in
// with its real *zap.Logger.
func resolveLogger(log []*zap.Logger) *zap.Logger {
	for _, l := range log {
		if l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// CheckDomain runs every domain-level rule and returns the diagnostics
// collected. It never stops early: a name-uniqueness violation does not
// prevent the cycle check from also running.
func CheckDomain(c *catalog.Catalog, log ...*zap.Logger) []diagnostics.Diagnostic {
	l := resolveLogger(log)
	bag := &diagnostics.Bag{}
	for _, rule := range domainRules {
		rule.Run(c, bag)
	}
	l.Debug("checked domain", zap.Int("rules", len(domainRules)), zap.Int("diagnostics", len(bag.All())))
	return bag.All()
}

// CheckDesign runs every design-level rule in addition to the domain
// rules, since a design is only meaningful over a consistent domain.
func CheckDesign(c *catalog.Catalog, log ...*zap.Logger) []diagnostics.Diagnostic {
	l := resolveLogger(log)
	bag := &diagnostics.Bag{}
	for _, rule := range domainRules {
		rule.Run(c, bag)
	}
	for _, rule := range designRules {
		rule.Run(c, bag)
	}
	l.Debug("checked design", zap.Int("rules", len(domainRules)+len(designRules)), zap.Int("diagnostics", len(bag.All())))
	return bag.All()
}
