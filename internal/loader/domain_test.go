package loader

import (
	"testing"

	"github.com/dorm-project/dorm/internal/catalog"
)

const sampleDomain = `
classes:
  - name: Person
    cardinality: 10
    attributes:
      - name: id
        type: uuid
        distinct_vals: 10
        is_identifier: true
  - name: Student
    attributes:
      - name: gpa
        type: float
        size: 4
associations:
  - name: enrollment
    ends:
      - name: enrolled_student
        role: student
        target: Student
        min: 1
        max: 1
      - name: enrolled_course
        role: course
        target: Person
        min: 0
        max: -1
generalizations:
  - name: PersonKind
    superclass: Person
    disjoint: true
    complete: false
    subclasses:
      - class: Student
        constraint: "kind = 'student'"
`

func TestLoadDomainThreadsAtomFields(t *testing.T) {
	c := catalog.New()
	if err := LoadDomain("sample.yaml", []byte(sampleDomain), c); err != nil {
		t.Fatalf("LoadDomain: %v", err)
	}

	person, ok := c.Atom("Person")
	if !ok || person.Kind != catalog.KindClass {
		t.Fatal("expected Person class to be registered")
	}
	if person.Class.Cardinality != 10 {
		t.Errorf("Person.Cardinality = %d, want 10", person.Class.Cardinality)
	}

	id, ok := c.Atom("id")
	if !ok || id.Kind != catalog.KindAttribute {
		t.Fatal("expected id attribute to be registered")
	}
	if !id.Attribute.IsIdentifier {
		t.Error("expected id.IsIdentifier to be true")
	}
	if id.Attribute.DistinctValues != 10 {
		t.Errorf("id.DistinctValues = %d, want 10", id.Attribute.DistinctValues)
	}

	gpa, ok := c.Atom("gpa")
	if !ok || gpa.Attribute.Size != 4 {
		t.Fatalf("expected gpa attribute with size 4, got %+v", gpa.Attribute)
	}

	end, ok := c.Atom("enrolled_student")
	if !ok || end.AssociationEnd.Role != "student" {
		t.Fatalf("expected enrolled_student end with role %q, got %+v", "student", end.AssociationEnd)
	}

	gens := c.Generalizations()
	if len(gens) != 1 {
		t.Fatalf("expected 1 generalization, got %d", len(gens))
	}
	g := gens[0]
	if g.Parent != "Person" {
		t.Errorf("generalization parent = %q, want Person", g.Parent)
	}
	if len(g.Children) != 1 || g.Children[0] != "Student" {
		t.Fatalf("generalization children = %v, want [Student]", g.Children)
	}
	if g.ConstraintFor("Student") != "kind = 'student'" {
		t.Errorf("constraint for Student = %q", g.ConstraintFor("Student"))
	}
}
