package catalog

import "testing"

func buildSampleDomain(t *testing.T) *Catalog {
	t.Helper()
	c := New()

	if _, err := c.AddClass(Class{Name: "User", Identifier: "id"}); err != nil {
		t.Fatalf("add class User: %v", err)
	}
	if _, err := c.AddAttribute(Attribute{Name: "id", Owner: "User", Type: "uuid"}); err != nil {
		t.Fatalf("add attribute id: %v", err)
	}
	if _, err := c.AddClass(Class{Name: "Post", Identifier: "id"}); err != nil {
		t.Fatalf("add class Post: %v", err)
	}
	if _, err := c.AddAttribute(Attribute{Name: "post_id", Owner: "Post", Type: "uuid"}); err != nil {
		t.Fatalf("add attribute post_id: %v", err)
	}

	if _, err := c.AddAssociationEnd(AssociationEnd{Name: "author", Target: "User", MinCard: 1, MaxCard: 1}); err != nil {
		t.Fatalf("add end author: %v", err)
	}
	if _, err := c.AddAssociationEnd(AssociationEnd{Name: "posts", Target: "Post", MinCard: 0, MaxCard: -1}); err != nil {
		t.Fatalf("add end posts: %v", err)
	}
	if _, err := c.AddAssociation(Association{Name: "authorship", Ends: []string{"author", "posts"}}); err != nil {
		t.Fatalf("add association authorship: %v", err)
	}

	return c
}

func TestCatalog(t *testing.T) {
	t.Run("register and get atom", func(t *testing.T) {
		c := buildSampleDomain(t)

		atom, ok := c.Atom("User")
		if !ok {
			t.Fatal("User should exist")
		}
		if atom.Kind != KindClass {
			t.Errorf("expected KindClass, got %v", atom.Kind)
		}
		if atom.Class.Identifier != "id" {
			t.Errorf("expected identifier id, got %s", atom.Class.Identifier)
		}
	})

	t.Run("duplicate atom name rejected", func(t *testing.T) {
		c := buildSampleDomain(t)
		if _, err := c.AddClass(Class{Name: "User", Identifier: "id"}); err == nil {
			t.Error("expected error registering duplicate atom name")
		}
	})

	t.Run("association requires two ends", func(t *testing.T) {
		c := New()
		c.AddAssociationEnd(AssociationEnd{Name: "solo", Target: "User"})
		if _, err := c.AddAssociation(Association{Name: "broken", Ends: []string{"solo"}}); err == nil {
			t.Error("expected error for association with fewer than two ends")
		}
	})

	t.Run("count", func(t *testing.T) {
		c := buildSampleDomain(t)
		atoms, edges := c.Count()
		if atoms != 6 {
			t.Errorf("expected 6 atoms, got %d", atoms)
		}
		if edges != 0 {
			t.Errorf("expected 0 edges, got %d", edges)
		}
	})

	t.Run("attributes of owner", func(t *testing.T) {
		c := buildSampleDomain(t)
		attrs := c.AttributesOf("User")
		if len(attrs) != 1 || attrs[0].Name != "id" {
			t.Errorf("expected [id], got %+v", attrs)
		}
	})
}

func TestCatalogStructsAndSets(t *testing.T) {
	c := buildSampleDomain(t)

	if _, err := c.AddStruct(Struct{Name: "UserRecord", Members: []string{"User", "id"}, Anchor: []string{"id"}}); err != nil {
		t.Fatalf("add struct: %v", err)
	}
	if _, err := c.AddSet(Set{Name: "users", StructNames: []string{"UserRecord"}}); err != nil {
		t.Fatalf("add set: %v", err)
	}

	if _, err := c.AddSet(Set{Name: "empty"}); err == nil {
		t.Error("expected error for set with no struct names")
	}

	sets := c.SetsContaining("UserRecord")
	if len(sets) != 1 || sets[0] != "users" {
		t.Errorf("expected [users], got %+v", sets)
	}

	order, err := c.SetDependencyOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 1 || order[0] != "users" {
		t.Errorf("expected [users], got %+v", order)
	}
}

func TestGeneralizationClosureAndSiblings(t *testing.T) {
	c := New()
	c.AddClass(Class{Name: "Vehicle", Identifier: "id"})
	c.AddClass(Class{Name: "Car", Identifier: "id"})
	c.AddClass(Class{Name: "Truck", Identifier: "id"})
	if _, err := c.AddGeneralization(Generalization{Name: "VehicleKind", Parent: "Vehicle", Children: []string{"Car", "Truck"}}); err != nil {
		t.Fatalf("add generalization: %v", err)
	}

	closure := c.GeneralizationClosure("Vehicle")
	if len(closure) != 3 {
		t.Errorf("expected 3 classes in closure, got %+v", closure)
	}

	siblings := c.Siblings("Car")
	if len(siblings) != 1 || siblings[0] != "Truck" {
		t.Errorf("expected [Truck], got %+v", siblings)
	}

	if c.HasGeneralizationCycle() {
		t.Error("did not expect a cycle")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	c := buildSampleDomain(t)
	blob, err := c.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	restored, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	atoms, edges := restored.Count()
	wantAtoms, wantEdges := c.Count()
	if atoms != wantAtoms || edges != wantEdges {
		t.Errorf("expected %d/%d atoms/edges, got %d/%d", wantAtoms, wantEdges, atoms, edges)
	}

	if _, ok := restored.Atom("User"); !ok {
		t.Error("expected User atom to survive round trip")
	}
}

func TestDeserializeRejectsCorruption(t *testing.T) {
	c := buildSampleDomain(t)
	blob, err := c.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	blob[40] ^= 0xFF

	if _, err := Deserialize(blob); err == nil {
		t.Error("expected checksum mismatch error")
	}
}

func TestDomainPaths(t *testing.T) {
	c := buildSampleDomain(t)
	paths := c.DomainPaths("User", "Post")
	if len(paths) == 0 {
		t.Fatal("expected at least one path from User to Post")
	}
	if paths[0].Hops[0] != "authorship" {
		t.Errorf("expected first hop authorship, got %+v", paths[0])
	}
}
