package loader

import (
	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
)

// DomainDocument is the on-disk shape of a domain file: the classes,
// associations and generalizations that make up a DORM domain, per
// spec.md §6's "domain file" external interface.
type DomainDocument struct {
	Classes         []classDoc          `yaml:"classes"`
	Associations    []associationDoc    `yaml:"associations"`
	Generalizations []generalizationDoc `yaml:"generalizations"`
}

type classDoc struct {
	Name        string         `yaml:"name"`
	Identifier  string         `yaml:"identifier"`
	Cardinality int            `yaml:"cardinality"`
	Attributes  []attributeDoc `yaml:"attributes"`
}

type attributeDoc struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Size         int    `yaml:"size"`
	DistinctVals int    `yaml:"distinct_vals"`
	IsIdentifier bool   `yaml:"is_identifier"`
	Nullable     bool   `yaml:"nullable"`
}

type associationDoc struct {
	Name string              `yaml:"name"`
	Ends []associationEndDoc `yaml:"ends"`
}

type associationEndDoc struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Target string `yaml:"target"`
	Min    int    `yaml:"min"`
	Max    int    `yaml:"max"`
}

// generalizationDoc's children are in subclasses[class, constraint] form
// (spec.md §6), not a bare name list, since every subclass must name its
// discriminant constraint (IC-Atoms10).
type generalizationDoc struct {
	Name       string        `yaml:"name"`
	Superclass string        `yaml:"superclass"`
	Subclasses []subclassDoc `yaml:"subclasses"`
	Disjoint   bool          `yaml:"disjoint"`
	Complete   bool          `yaml:"complete"`
}

type subclassDoc struct {
	Class      string `yaml:"class"`
	Constraint string `yaml:"constraint"`
}

// LoadDomain parses a domain document and applies its atoms to c. Any
// error returned is either a *ParseError (malformed YAML) or a catalog
// registration error (e.g. duplicate name); it is never a semantic
// invariant violation, which only the checker reports.
func LoadDomain(file string, data []byte, c *catalog.Catalog, log ...*zap.Logger) error {
	l := resolveLogger(log)
	var doc DomainDocument
	if _, err := decode(file, data, &doc); err != nil {
		return err
	}
	l.Debug("loaded domain document", zap.String("file", file), zap.Int("classes", len(doc.Classes)), zap.Int("associations", len(doc.Associations)), zap.Int("generalizations", len(doc.Generalizations)))

	for _, cl := range doc.Classes {
		if _, err := c.AddClass(catalog.Class{
			Name:        cl.Name,
			Identifier:  cl.Identifier,
			Cardinality: cl.Cardinality,
		}); err != nil {
			return err
		}
		for _, attr := range cl.Attributes {
			if _, err := c.AddAttribute(catalog.Attribute{
				Name:           attr.Name,
				Owner:          cl.Name,
				Type:           attr.Type,
				Size:           attr.Size,
				DistinctValues: attr.DistinctVals,
				IsIdentifier:   attr.IsIdentifier,
				Nullable:       attr.Nullable,
			}); err != nil {
				return err
			}
		}
	}

	for _, assoc := range doc.Associations {
		endNames := make([]string, 0, len(assoc.Ends))
		for _, end := range assoc.Ends {
			max := end.Max
			if max == 0 {
				max = 1
			}
			if _, err := c.AddAssociationEnd(catalog.AssociationEnd{
				Name:    end.Name,
				Role:    end.Role,
				Target:  end.Target,
				MinCard: end.Min,
				MaxCard: max,
			}); err != nil {
				return err
			}
			endNames = append(endNames, end.Name)
		}
		if _, err := c.AddAssociation(catalog.Association{Name: assoc.Name, Ends: endNames}); err != nil {
			return err
		}
	}

	for _, gen := range doc.Generalizations {
		children := make([]string, 0, len(gen.Subclasses))
		constraints := make([]string, 0, len(gen.Subclasses))
		for _, sub := range gen.Subclasses {
			children = append(children, sub.Class)
			constraints = append(constraints, sub.Constraint)
		}
		if _, err := c.AddGeneralization(catalog.Generalization{
			Name:        gen.Name,
			Parent:      gen.Superclass,
			Children:    children,
			Constraints: constraints,
			Disjoint:    gen.Disjoint,
			Complete:    gen.Complete,
		}); err != nil {
			return err
		}
	}

	return nil
}
