// Package diagnostics defines the severity levels and structured
// diagnostic records produced by the loader, checker, query translator
// and migration planner.
package diagnostics

import "fmt"

// Severity represents how serious a Diagnostic is.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Internal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "internal":
		*s = Internal
	default:
		*s = Error
	}
	return nil
}

// Location pinpoints a diagnostic inside a source document.
type Location struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Diagnostic is a single finding produced during loading, checking, query
// translation or migration planning. Rule is the invariant code it
// belongs to (e.g. "IC-Atoms13"); Code is DORM's own stable error code
// (e.g. "D113").
type Diagnostic struct {
	Code     string    `json:"code"`
	Rule     string    `json:"rule,omitempty"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Names    []string  `json:"names,omitempty"`
	Location *Location `json:"location,omitempty"`
}

func (d Diagnostic) Error() string {
	if d.Location != nil && d.Location.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s: %s", d.Location.File, d.Location.Line, d.Location.Column, d.Code, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Code, d.Severity, d.Message)
}

func (d Diagnostic) IsError() bool {
	return d.Severity == Error || d.Severity == Internal
}

// Bag collects diagnostics produced over the course of a fold (checker
// run, query translation, migration planning) without short-circuiting
// on the first finding.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) Addf(code, rule string, sev Severity, names []string, format string, args ...any) {
	b.Add(Diagnostic{
		Code:     code,
		Rule:     rule,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Names:    names,
	})
}

func (b *Bag) All() []Diagnostic {
	return b.items
}

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.IsError() {
			return true
		}
	}
	return false
}

func (b *Bag) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}
