package loader

import (
	"github.com/dorm-project/dorm/internal/querytranslate"
)

// QueryDocument is the on-disk shape of a query file: a projection list,
// a pattern of domain elements that must be connected, and an optional
// filter predicate, per spec.md §6's "query file" external interface.
type QueryDocument struct {
	Project []string `yaml:"project"`
	Pattern []string `yaml:"pattern"`
	Filter  string   `yaml:"filter"`
}

// LoadQuery parses a query document into a querytranslate.QuerySpec.
func LoadQuery(file string, data []byte) (querytranslate.QuerySpec, error) {
	var doc QueryDocument
	if _, err := decode(file, data, &doc); err != nil {
		return querytranslate.QuerySpec{}, err
	}
	if len(doc.Project) == 0 {
		return querytranslate.QuerySpec{}, errf(file, "query document must project at least one attribute")
	}
	if len(doc.Pattern) == 0 {
		return querytranslate.QuerySpec{}, errf(file, "query document must name at least one pattern element")
	}
	return querytranslate.QuerySpec{
		Project: doc.Project,
		Pattern: doc.Pattern,
		Filter:  doc.Filter,
	}, nil
}
