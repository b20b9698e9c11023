package loader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/schemagen"
)

// DesignDocument is the on-disk shape of a design file: the paradigm
// choice plus the structs and sets layered on top of a domain, per
// spec.md §6's "design file" external interface.
type DesignDocument struct {
	Paradigm string      `yaml:"paradigm"`
	Structs  []structDoc `yaml:"structs"`
	Sets     []setDoc    `yaml:"sets"`
}

type structDoc struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
	Anchor  []string `yaml:"anchor"`
}

type setDoc struct {
	Name         string   `yaml:"name"`
	Structs      []string `yaml:"structs"`
	Discriminant string   `yaml:"discriminant"`
}

// LoadDesign parses a design document, applies its structs/sets to c and
// returns the chosen paradigm. The domain the design is layered over
// must already have been loaded into c.
func LoadDesign(file string, data []byte, c *catalog.Catalog, log ...*zap.Logger) (schemagen.Paradigm, error) {
	l := resolveLogger(log)
	var doc DesignDocument
	if _, err := decode(file, data, &doc); err != nil {
		return "", err
	}

	paradigm, err := schemagen.ParseParadigm(doc.Paradigm)
	if err != nil {
		return "", &ParseError{File: file, Message: err.Error()}
	}
	l.Debug("loaded design document", zap.String("file", file), zap.String("paradigm", string(paradigm)), zap.Int("structs", len(doc.Structs)), zap.Int("sets", len(doc.Sets)))

	for _, s := range doc.Structs {
		if _, err := c.AddStruct(catalog.Struct{
			Name:    s.Name,
			Members: s.Members,
			Anchor:  s.Anchor,
		}); err != nil {
			return "", err
		}
	}

	for _, s := range doc.Sets {
		if _, err := c.AddSet(catalog.Set{
			Name:         s.Name,
			StructNames:  s.Structs,
			Discriminant: s.Discriminant,
		}); err != nil {
			return "", err
		}
	}

	return paradigm, nil
}

// errf is a tiny local helper kept to avoid importing fmt in callers
// that just want a formatted *ParseError.
func errf(file string, format string, args ...any) error {
	return &ParseError{File: file, Message: fmt.Sprintf(format, args...)}
}
