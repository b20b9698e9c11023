package migrate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/querytranslate"
	"github.com/dorm-project/dorm/internal/schemagen"
)

// resolveLogger returns the first non-nil logger passed, or a no-op
// logger when none was given, so Plan accepts an optional *zap.Logger
// without breaking existing callers.
func resolveLogger(log []*zap.Logger) *zap.Logger {
	for _, l := range log {
		if l != nil {
			return l
		}
	}
	return zap.NewNop()
}

// ErrNoSourceData is returned by Plan when the source design's
// persisted metadata does not mark it as having data migrated into it,
// mirroring the original Relational.has_data consultation that gates
// migration.
var ErrNoSourceData = fmt.Errorf("migrate: source design has no data to migrate")

// Plan builds an ordered migration plan that reads every attribute
// needed by each Set in target (in Set-dependency order) out of source,
// using sourceParadigm to translate the read query against source's
// actual physical layout, and inserts it into target's physical table
// for that Set.
func Plan(source, target *catalog.Catalog, sourceParadigm schemagen.Paradigm, sourceHasData bool, log ...*zap.Logger) (MigrationPlan, error) {
	l := resolveLogger(log)
	if !sourceHasData {
		return MigrationPlan{}, ErrNoSourceData
	}

	order, err := target.SetDependencyOrder()
	if err != nil {
		return MigrationPlan{}, fmt.Errorf("migrate: ordering target sets: %w", err)
	}

	plan := MigrationPlan{ID: newPlanID()}
	for _, setName := range order {
		set, ok := target.Edge(setName)
		if !ok {
			continue
		}

		project, pattern := readRequirements(target, set.Set)
		if len(project) == 0 || len(pattern) == 0 {
			continue
		}

		result, err := querytranslate.Translate(source, sourceParadigm, querytranslate.QuerySpec{
			Project: project,
			Pattern: pattern,
		}, l)
		if err != nil {
			return MigrationPlan{}, fmt.Errorf("migrate: building read query for set %q: %w", setName, err)
		}

		stmt := fmt.Sprintf(
			"INSERT INTO %s (%s)\n  SELECT %s\n  FROM (\n    %s\n  ) AS migrated;",
			quoteTable(setName), columnList(project), columnList(project), result.SQL,
		)
		plan.Statements = append(plan.Statements, Statement{TargetSet: setName, SQL: stmt})
	}

	l.Debug("built migration plan", zap.String("plan_id", plan.ID), zap.Int("statements", len(plan.Statements)))
	return plan, nil
}

// readRequirements computes the projection (every attribute the set's
// structs need) and the pattern (every class its structs name as a
// member) for
// a target Set, used to build the source-side read query.
func readRequirements(c *catalog.Catalog, s catalog.Set) (project, pattern []string) {
	seenAttr := map[string]bool{}
	seenClass := map[string]bool{}
	for _, structName := range s.StructNames {
		for _, name := range c.StructPath(structName) {
			atom, ok := c.Atom(name)
			if !ok {
				continue
			}
			switch atom.Kind {
			case catalog.KindAttribute:
				if !seenAttr[name] {
					seenAttr[name] = true
					project = append(project, name)
				}
			case catalog.KindClass:
				if !seenClass[name] {
					seenClass[name] = true
					pattern = append(pattern, name)
				}
			}
		}
	}
	return project, pattern
}

func columnList(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += quoteIdentifier(n)
	}
	return out
}

func quoteTable(name string) string      { return `"` + name + `"` }
func quoteIdentifier(name string) string { return `"` + name + `"` }
