package querytranslate

import (
	"fmt"
	"regexp"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/diagnostics"
	"github.com/dorm-project/dorm/internal/schemagen"
)

// tokenPattern matches either a single-quoted string literal (left
// untouched) or a bare identifier (a candidate for table qualification),
// so a literal like 'a@example.com' is never mistaken for three bare
// identifiers.
var tokenPattern = regexp.MustCompile(`'[^']*'|[A-Za-z_][A-Za-z0-9_]*`)

// DanglingPredicateError reports a filter predicate referencing an
// attribute of a class that is absent from the chosen Set combination
// (spec.md §4.4 step 5 / failure kind `DanglingPredicate`).
type DanglingPredicateError struct {
	Attribute string
}

func (e *DanglingPredicateError) Error() string {
	return fmt.Sprintf("querytranslate: predicate references attribute %q, which no set in the chosen combination covers (%s)", e.Attribute, diagnostics.CodeDanglingPredicate)
}

// translateFilter qualifies every bare attribute name occurring in a raw
// filter predicate with the table that owns it, leaving SQL operators,
// literals and keywords (AND, OR, NOT, comparison operators) untouched.
// This is the Go-native analogue of the original catalog.py's
// parse_predicate, simplified to name qualification rather than a full
// expression parse, since the filter predicate is already SQL-shaped
// boolean syntax by the time it reaches the translator. An identifier
// that resolves to no set in combo fails with *DanglingPredicateError
// rather than passing through unqualified.
func translateFilter(c *catalog.Catalog, paradigm schemagen.Paradigm, combo []string, filter string) (string, error) {
	var firstErr error
	translated := tokenPattern.ReplaceAllStringFunc(filter, func(token string) string {
		if firstErr != nil {
			return token
		}
		if token[0] == '\'' || isSQLKeyword(token) {
			return token
		}
		owner := ownerSet(c, combo, token)
		if owner == "" {
			firstErr = &DanglingPredicateError{Attribute: token}
			return token
		}
		return columnRef(paradigm, owner, token)
	})
	if firstErr != nil {
		return "", firstErr
	}
	return translated, nil
}

func isSQLKeyword(token string) bool {
	switch token {
	case "AND", "and", "OR", "or", "NOT", "not", "NULL", "null", "TRUE", "true", "FALSE", "false", "IN", "in", "LIKE", "like":
		return true
	default:
		return false
	}
}
