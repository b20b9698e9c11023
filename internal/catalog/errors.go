package catalog

import "errors"

// ErrNotFound is the sentinel error for a name that is not registered in
// the catalog. The catalog's own lookups (Atom, Edge) do not return it;
// they report a missing name with a false boolean.
var ErrNotFound = errors.New("catalog: not found")
