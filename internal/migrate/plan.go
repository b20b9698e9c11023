// Package migrate builds the read-then-insert plan that moves data from
// one design's physical tables into another design's physical tables
// over the same domain, reusing internal/querytranslate to build each
// target Set's source-side read query.
package migrate

import "github.com/google/uuid"

// Statement is one step of a Plan: the SQL text and the name of the
// target Set it populates, kept together so a sink can log progress per
// Set as it executes the plan.
type Statement struct {
	TargetSet string
	SQL       string
}

// MigrationPlan is an ordered, ready-to-execute migration: one or more
// Statements, ordered so that a Set is never populated before the Sets
// its anchor depends on.
type MigrationPlan struct {
	ID         string
	Statements []Statement
}

// newPlanID returns a unique identifier for a freshly built Plan.
func newPlanID() string {
	return uuid.NewString()
}
