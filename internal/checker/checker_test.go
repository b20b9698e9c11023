package checker

import (
	"testing"

	"github.com/dorm-project/dorm/internal/catalog"
)

func buildValidDomain(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "User", Identifier: "id"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "User", Type: "uuid", IsIdentifier: true})
	return c
}

func TestCheckDomainCleanCatalog(t *testing.T) {
	c := buildValidDomain(t)
	diags := CheckDomain(c)
	for _, d := range diags {
		if d.IsError() {
			t.Errorf("unexpected error diagnostic: %v", d)
		}
	}
}

func TestCheckDomainMissingIdentifier(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Orphan"})

	diags := CheckDomain(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Atoms13" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Atoms13 diagnostic for class with no identifier")
	}
}

func TestCheckDomainAssociationArity(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "User", Identifier: "id"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "User", Type: "uuid"})
	c.AddAssociationEnd(catalog.AssociationEnd{Name: "solo", Target: "User"})
	// Bypass Catalog.AddAssociation's own arity guard by registering
	// through a struct literal-equivalent path is not possible from
	// outside the package, so this exercises the catalog-level guard
	// directly instead of the checker rule.
	if _, err := c.AddAssociation(catalog.Association{Name: "broken", Ends: []string{"solo"}}); err == nil {
		t.Error("expected catalog to reject association with one end")
	}
}

func TestCheckDomainRunsEveryRuleEvenAfterAViolation(t *testing.T) {
	c := catalog.New()
	// Two independent violations: missing identifier AND a dangling
	// attribute owner. Both must be reported; the fold never
	// short-circuits on the first.
	c.AddClass(catalog.Class{Name: "Orphan"})
	c.AddAttribute(catalog.Attribute{Name: "stray", Owner: "Nonexistent", Type: "text"})

	diags := CheckDomain(c)
	rules := map[string]bool{}
	for _, d := range diags {
		rules[d.Rule] = true
	}
	if !rules["IC-Atoms13"] {
		t.Error("expected IC-Atoms13 to have fired")
	}
	if !rules["IC-Atoms-dangling-attr"] {
		t.Error("expected IC-Atoms-dangling-attr to have fired")
	}
}

func TestCheckDesignAnchorMismatch(t *testing.T) {
	c := buildValidDomain(t)
	c.AddClass(catalog.Class{Name: "Admin", Identifier: "admin_id"})
	c.AddAttribute(catalog.Attribute{Name: "admin_id", Owner: "Admin", Type: "uuid", IsIdentifier: true})

	c.AddStruct(catalog.Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddStruct(catalog.Struct{Name: "AdminRecord", Members: []string{"Admin", "admin_id"}, Anchor: []string{"admin_id"}})
	c.AddSet(catalog.Set{Name: "people", StructNames: []string{"UserRecord", "AdminRecord"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Design4" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Design4 diagnostic for mismatched anchors in the same set")
	}
}

func TestCheckDomainSubclassMustNotCarryIdentifier(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Person", Identifier: "id"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "Person", Type: "uuid", IsIdentifier: true})
	c.AddClass(catalog.Class{Name: "Student", Identifier: "student_id"})
	c.AddAttribute(catalog.Attribute{Name: "student_id", Owner: "Student", Type: "uuid", IsIdentifier: true})
	c.AddGeneralization(catalog.Generalization{
		Name: "PersonKind", Parent: "Person",
		Children: []string{"Student"}, Constraints: []string{"kind = 'student'"},
	})

	diags := CheckDomain(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Atoms14" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Atoms14 diagnostic for subclass carrying its own identifier")
	}
}

func TestCheckDomainTopOfHierarchyNeedsIdentifier(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Person"})
	c.AddClass(catalog.Class{Name: "Student"})
	c.AddGeneralization(catalog.Generalization{
		Name: "PersonKind", Parent: "Person",
		Children: []string{"Student"}, Constraints: []string{"kind = 'student'"},
	})

	diags := CheckDomain(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Atoms15" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Atoms15 diagnostic for hierarchy top with no identifier")
	}
}

func TestCheckDomainGeneralizationHierarchyValid(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Person", Identifier: "id", Cardinality: 10})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "Person", Type: "uuid", IsIdentifier: true, DistinctValues: 10})
	c.AddClass(catalog.Class{Name: "Student", Cardinality: 4})
	c.AddClass(catalog.Class{Name: "Worker", Cardinality: 6})
	c.AddGeneralization(catalog.Generalization{
		Name:        "PersonKind",
		Parent:      "Person",
		Children:    []string{"Student", "Worker"},
		Constraints: []string{"kind = 'student'", "kind = 'worker'"},
		Disjoint:    true,
		Complete:    true,
	})

	diags := CheckDomain(c)
	for _, d := range diags {
		if d.IsError() {
			t.Errorf("unexpected error diagnostic for valid generalization hierarchy: %v", d)
		}
	}
}

func TestCheckDomainDisconnected(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "User", Identifier: "id"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "User", Type: "uuid", IsIdentifier: true})
	c.AddClass(catalog.Class{Name: "Island", Identifier: "island_id"})
	c.AddAttribute(catalog.Attribute{Name: "island_id", Owner: "Island", Type: "uuid", IsIdentifier: true})

	diags := CheckDomain(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Generic2" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Generic2 diagnostic for a disconnected class graph")
	}
}

func TestCheckDomainAttributeDistinctValuesExceedsCardinality(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "User", Identifier: "id", Cardinality: 5})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "User", Type: "uuid", IsIdentifier: true, DistinctValues: 5})
	c.AddAttribute(catalog.Attribute{Name: "email", Owner: "User", Type: "text", DistinctValues: 9})

	diags := CheckDomain(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Atoms5" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Atoms5 diagnostic for an attribute with more distinct values than its class's cardinality")
	}
}

func TestCheckDomainMultipleSuperclasses(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "A"})
	c.AddClass(catalog.Class{Name: "B"})
	c.AddClass(catalog.Class{Name: "C"})
	c.AddGeneralization(catalog.Generalization{Name: "G1", Parent: "A", Children: []string{"C"}, Constraints: []string{"x"}})
	c.AddGeneralization(catalog.Generalization{Name: "G2", Parent: "B", Children: []string{"C"}, Constraints: []string{"y"}})

	diags := CheckDomain(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Atoms9" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Atoms9 diagnostic for a class with two direct superclasses")
	}
}

func TestCheckDesignSiblingSetNeedsDiscriminator(t *testing.T) {
	c := buildValidDomain(t)
	c.AddClass(catalog.Class{Name: "Admin", Identifier: "admin_id"})
	c.AddAttribute(catalog.Attribute{Name: "admin_id", Owner: "Admin", Type: "uuid", IsIdentifier: true})

	c.AddStruct(catalog.Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddStruct(catalog.Struct{Name: "AdminRecord", Members: []string{"Admin", "admin_id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "people", StructNames: []string{"UserRecord", "AdminRecord"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Design-discriminator" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Design-discriminator diagnostic for a set with no discriminant over multiple structs")
	}
}

func TestCheckDesignSiblingSetWithDiscriminatorIsValid(t *testing.T) {
	c := buildValidDomain(t)
	c.AddClass(catalog.Class{Name: "Admin", Identifier: "admin_id"})
	c.AddAttribute(catalog.Attribute{Name: "admin_id", Owner: "Admin", Type: "uuid", IsIdentifier: true})

	c.AddStruct(catalog.Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddStruct(catalog.Struct{Name: "AdminRecord", Members: []string{"Admin", "admin_id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "people", StructNames: []string{"UserRecord", "AdminRecord"}, Discriminant: "kind"})

	diags := CheckDesign(c)
	for _, d := range diags {
		if d.Rule == "IC-Design-discriminator" {
			t.Errorf("unexpected discriminator diagnostic when set names one: %v", d)
		}
	}
}

func TestCheckDesignSetCannotContainSetDirectly(t *testing.T) {
	c := buildValidDomain(t)
	c.AddStruct(catalog.Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "inner", StructNames: []string{"UserRecord"}})
	c.AddSet(catalog.Set{Name: "outer", StructNames: []string{"inner"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Design-nesting-direct" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Design-nesting-direct diagnostic for a set directly containing another set")
	}
}

func TestCheckDesignSetNestingTooDeep(t *testing.T) {
	c := buildValidDomain(t)
	c.AddStruct(catalog.Struct{Name: "LeafRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "leaves", StructNames: []string{"LeafRecord"}})
	c.AddStruct(catalog.Struct{Name: "MidRecord", Members: []string{"User", "id", "leaves"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "mids", StructNames: []string{"MidRecord"}})
	c.AddStruct(catalog.Struct{Name: "TopRecord", Members: []string{"User", "id", "mids"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "tops", StructNames: []string{"TopRecord"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Design-nesting-depth" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Design-nesting-depth diagnostic for a set nested two levels deep")
	}
}

func TestCheckDesignValid(t *testing.T) {
	c := buildValidDomain(t)
	c.AddStruct(catalog.Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "users", StructNames: []string{"UserRecord"}})

	diags := CheckDesign(c)
	for _, d := range diags {
		if d.IsError() {
			t.Errorf("unexpected error diagnostic: %v", d)
		}
	}
}

func TestCheckDesignStructCannotContainClassAndItsSuperclass(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Person"})
	c.AddClass(catalog.Class{Name: "Student"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "Person", Type: "uuid", IsIdentifier: true})
	c.AddGeneralization(catalog.Generalization{
		Name: "PersonKind", Parent: "Person",
		Children:    []string{"Student"},
		Constraints: []string{"kind = 'student'"},
	})

	c.AddStruct(catalog.Struct{Name: "Bad", Members: []string{"Person", "Student", "id"}, Anchor: []string{"id"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Structs6" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Structs6 diagnostic for a struct containing both a class and its superclass")
	}
}

func TestCheckDesignStructSiblingsNeedDiscriminantAttribute(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Person"})
	c.AddClass(catalog.Class{Name: "Student"})
	c.AddClass(catalog.Class{Name: "Worker"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "Person", Type: "uuid", IsIdentifier: true})
	c.AddGeneralization(catalog.Generalization{
		Name: "PersonKind", Parent: "Person",
		Children:    []string{"Student", "Worker"},
		Constraints: []string{"kind = 'student'", "kind = 'worker'"},
	})

	c.AddStruct(catalog.Struct{Name: "Siblings", Members: []string{"Student", "Worker", "id"}, Anchor: []string{"id"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Structs8" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Structs8 diagnostic for sibling classes with no discriminant attribute among the struct's members")
	}
}

func TestCheckDesignAmbiguousPathToAnchor(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Post", Identifier: "id"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "Post", Type: "uuid", IsIdentifier: true})
	c.AddClass(catalog.Class{Name: "User", Identifier: "user_id"})
	c.AddAttribute(catalog.Attribute{Name: "user_id", Owner: "User", Type: "uuid", IsIdentifier: true})

	c.AddAssociationEnd(catalog.AssociationEnd{Name: "toUser", Role: "author", Target: "User", MinCard: 1, MaxCard: 1})
	c.AddAssociationEnd(catalog.AssociationEnd{Name: "toPost", Role: "post", Target: "Post", MinCard: 0, MaxCard: -1})
	c.AddAssociation(catalog.Association{Name: "authored", Ends: []string{"toUser", "toPost"}})

	c.AddAssociationEnd(catalog.AssociationEnd{Name: "toUser2", Role: "reviewer", Target: "User", MinCard: 1, MaxCard: 1})
	c.AddAssociationEnd(catalog.AssociationEnd{Name: "toPost2", Role: "reviewed", Target: "Post", MinCard: 0, MaxCard: -1})
	c.AddAssociation(catalog.Association{Name: "reviewed", Ends: []string{"toUser2", "toPost2"}})

	c.AddStruct(catalog.Struct{
		Name:    "PostRecord",
		Members: []string{"Post", "id", "toUser", "toPost", "toUser2", "toPost2", "User"},
		Anchor:  []string{"Post"},
	})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Structs-b" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Structs-b diagnostic for two distinct association paths from the anchor to User")
	}
}

func TestCheckDesignAttributeNotInAnySet(t *testing.T) {
	c := buildValidDomain(t)
	c.AddClass(catalog.Class{Name: "Audit"})
	c.AddAttribute(catalog.Attribute{Name: "note", Owner: "Audit", Type: "text"})

	c.AddStruct(catalog.Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "users", StructNames: []string{"UserRecord"}})

	diags := CheckDesign(c)
	found := false
	for _, d := range diags {
		if d.Rule == "IC-Design2" {
			found = true
		}
	}
	if !found {
		t.Error("expected IC-Design2 diagnostic for an attribute unreachable from any set")
	}
}
