// Package querytranslate turns a query specification (a projection, a
// pattern of domain elements that must be connected, and an optional
// filter) into one SQL statement against whichever physical paradigm is
// currently installed, FLAT or JSON_NESTED. The algorithm follows four
// stages, run in order: generalization expansion, table mapping
// (bucket-combination search), join synthesis plus projection synthesis,
// and filter translation, with the per-branch statements assembled via
// UNION ALL.
package querytranslate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/diagnostics"
	"github.com/dorm-project/dorm/internal/schemagen"
)

// resolveLogger returns the first non-nil logger passed, or a no-op
// logger when none was given, so Translate accepts an optional
// *zap.Logger without breaking existing callers.
func resolveLogger(log []*zap.Logger) *zap.Logger {
	for _, l := range log {
		if l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// QuerySpec is the parsed shape of a query document (spec.md §6's
// "query file" external interface).
type QuerySpec struct {
	Project []string
	Pattern []string
	Filter  string
}

// Result is a translated query: the assembled SQL text plus any
// warnings recorded while translating it (e.g. a FROM-clause
// deduplication, or which Set combination was chosen among several
// equally small alternatives).
type Result struct {
	SQL          string
	Warnings     []diagnostics.Diagnostic
	Alternatives [][]string
}

// Translate runs the full generalization-expansion -> table-mapping ->
// join-synthesis -> projection-synthesis -> filter-translation ->
// union-assembly pipeline described in SPEC_FULL.md's internal/
// querytranslate entry, against the physical layout of paradigm.
func Translate(c *catalog.Catalog, paradigm schemagen.Paradigm, spec QuerySpec, log ...*zap.Logger) (Result, error) {
	l := resolveLogger(log)
	if len(spec.Project) == 0 {
		return Result{}, fmt.Errorf("querytranslate: query must project at least one attribute")
	}
	if len(spec.Pattern) == 0 {
		return Result{}, fmt.Errorf("querytranslate: query must name at least one pattern element")
	}

	branches := expandGeneralizations(c, spec.Pattern)
	l.Debug("expanded query pattern", zap.Strings("pattern", spec.Pattern), zap.Int("branches", len(branches)))

	var bag diagnostics.Bag
	var selects []string
	var allAlternatives [][]string
	seenSelects := map[string]bool{}

	for _, branch := range branches {
		combo, alternatives, err := mapBuckets(c, branch, spec.Project)
		if err != nil {
			return Result{}, err
		}
		if len(alternatives) > 1 {
			bag.Addf(diagnostics.CodeAmbiguousPath, "", diagnostics.Warning, combo,
				"query pattern %v matched %d equally small set combinations; chose %v lexicographically", branch, len(alternatives), combo)
			allAlternatives = append(allAlternatives, alternatives...)
		}

		joins, dedupWarned, err := synthesizeJoins(c, paradigm, combo)
		if err != nil {
			return Result{}, err
		}
		if dedupWarned {
			bag.Addf(diagnostics.CodeFromClauseDedup, "", diagnostics.Warning, combo,
				"FROM clause for combination %v required deduplication", combo)
		}

		projection, err := synthesizeProjection(c, paradigm, combo, branch, spec.Project)
		if err != nil {
			return Result{}, err
		}

		where := ""
		if spec.Filter != "" {
			where, err = translateFilter(c, paradigm, combo, spec.Filter)
			if err != nil {
				return Result{}, err
			}
		}

		stmt := assembleSelect(projection, joins, where)

		// Step 6: branches that expand to structurally identical SQL
		// (e.g. two leaf subclasses both mapping onto the same Set
		// combination, projection and filter) contribute nothing extra
		// to the union and are dropped rather than duplicated.
		if seenSelects[stmt] {
			bag.Addf(diagnostics.CodeFromClauseDedup, "", diagnostics.Warning, combo,
				"branch %v produced a SELECT identical to one already included; dropped from the union", branch)
			continue
		}
		seenSelects[stmt] = true
		selects = append(selects, stmt)
	}

	if len(selects) == 0 {
		return Result{}, fmt.Errorf("querytranslate: generalization expansion produced no branches for pattern %v", spec.Pattern)
	}

	sql := strings.Join(selects, "\nUNION ALL\n")
	return Result{SQL: sql, Warnings: bag.All(), Alternatives: allAlternatives}, nil
}

func assembleSelect(projection []string, joins []joinClause, where string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(projection, ", "))
	b.WriteString("\nFROM ")
	b.WriteString(joins[0].table)
	for _, j := range joins[1:] {
		fmt.Fprintf(&b, "\nJOIN %s ON %s", j.table, j.on)
	}
	if where != "" {
		b.WriteString("\nWHERE ")
		b.WriteString(where)
	}
	return b.String()
}
