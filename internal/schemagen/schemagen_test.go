package schemagen

import (
	"strings"
	"testing"

	"github.com/dorm-project/dorm/internal/catalog"
)

func buildSimpleDesign(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "User", Identifier: "id"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "User", Type: "uuid"})
	c.AddAttribute(catalog.Attribute{Name: "email", Owner: "User", Type: "text"})

	if _, err := c.AddStruct(catalog.Struct{
		Name:    "UserRecord",
		Members: []string{"User", "id", "email"},
		Anchor:  []string{"id"},
	}); err != nil {
		t.Fatalf("add struct: %v", err)
	}
	if _, err := c.AddSet(catalog.Set{Name: "users", StructNames: []string{"UserRecord"}}); err != nil {
		t.Fatalf("add set: %v", err)
	}
	return c
}

func TestParseParadigm(t *testing.T) {
	if _, err := ParseParadigm("FLAT"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseParadigm("JSON_NESTED"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseParadigm("XML"); err == nil {
		t.Error("expected error for unknown paradigm")
	}
}

func TestFlatGeneratorCreateTable(t *testing.T) {
	c := buildSimpleDesign(t)
	g, err := New(FLAT)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	statements, err := GenerateAll(g, c)
	if err != nil {
		t.Fatalf("generate all: %v", err)
	}
	if len(statements) == 0 {
		t.Fatal("expected at least one statement")
	}
	joined := strings.Join(statements, "\n")
	if !strings.Contains(joined, `CREATE TABLE "users"`) {
		t.Errorf("expected a CREATE TABLE for users, got:\n%s", joined)
	}
	if !strings.Contains(joined, "PRIMARY KEY") {
		t.Errorf("expected a primary key statement, got:\n%s", joined)
	}
}

func TestJSONNestedGeneratorCreateTable(t *testing.T) {
	c := buildSimpleDesign(t)
	g, err := New(JSONNested)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	statements, err := GenerateAll(g, c)
	if err != nil {
		t.Fatalf("generate all: %v", err)
	}
	joined := strings.Join(statements, "\n")
	if !strings.Contains(joined, "value JSONB") {
		t.Errorf("expected a JSONB value column, got:\n%s", joined)
	}
	if !strings.Contains(joined, "CREATE UNIQUE INDEX pk_users") {
		t.Errorf("expected a unique index over the JSON anchor path, got:\n%s", joined)
	}

	if len(g.Warnings()) == 0 {
		t.Error("expected a warning about unsupported foreign keys")
	}
}

func TestFlatGeneratorEmitsSiblingDiscriminatorColumn(t *testing.T) {
	c := catalog.New()
	c.AddClass(catalog.Class{Name: "Person", Identifier: "id"})
	c.AddClass(catalog.Class{Name: "Student"})
	c.AddClass(catalog.Class{Name: "Worker"})
	c.AddAttribute(catalog.Attribute{Name: "id", Owner: "Person", Type: "uuid"})
	c.AddGeneralization(catalog.Generalization{
		Name: "PersonKind", Parent: "Person",
		Children:    []string{"Student", "Worker"},
		Constraints: []string{"kind = 'student'", "kind = 'worker'"},
	})

	c.AddStruct(catalog.Struct{Name: "StudentRecord", Members: []string{"Student", "id"}, Anchor: []string{"id"}})
	c.AddStruct(catalog.Struct{Name: "WorkerRecord", Members: []string{"Worker", "id"}, Anchor: []string{"id"}})
	c.AddSet(catalog.Set{Name: "people", StructNames: []string{"StudentRecord", "WorkerRecord"}, Discriminant: "kind"})

	g, err := New(FLAT)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	statements, err := GenerateAll(g, c)
	if err != nil {
		t.Fatalf("generate all: %v", err)
	}
	joined := strings.Join(statements, "\n")
	if !strings.Contains(joined, `"kind" VARCHAR(64)`) {
		t.Errorf("expected a discriminator column for the shared set, got:\n%s", joined)
	}
}
