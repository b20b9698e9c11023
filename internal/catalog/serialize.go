package catalog

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// blob is the on-disk/on-wire shape of a Catalog: the atom and edge
// arenas plus a checksum, matching the "self-contained persisted form"
// spec.md §6(a) describes.
type blob struct {
	Atoms []Atom
	Edges []Edge
}

// Serialize encodes the catalog into a self-contained checksummed blob.
// The checksum is a blake2b-256 digest of the gob-encoded payload,
// stored as the first 32 bytes of the returned slice, so Deserialize can
// detect a corrupted or truncated blob before it ever reaches the
// checker or schema generator.
func (c *Catalog) Serialize() ([]byte, error) {
	c.mu.RLock()
	b := blob{Atoms: c.atoms[1:], Edges: c.edges[1:]}
	c.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("catalog: encode: %w", err)
	}
	sum := blake2b.Sum256(buf.Bytes())
	out := make([]byte, 0, len(sum)+buf.Len())
	out = append(out, sum[:]...)
	out = append(out, buf.Bytes()...)
	return out, nil
}

// Deserialize decodes a blob produced by Serialize, rejecting it if the
// checksum does not match.
func Deserialize(data []byte) (*Catalog, error) {
	const sumLen = 32
	if len(data) < sumLen {
		return nil, fmt.Errorf("catalog: blob too short to contain a checksum")
	}
	wantSum := data[:sumLen]
	payload := data[sumLen:]
	gotSum := blake2b.Sum256(payload)
	if !bytes.Equal(wantSum, gotSum[:]) {
		return nil, fmt.Errorf("catalog: checksum mismatch, blob is corrupted")
	}

	var b blob
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&b); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := New()
	for _, a := range b.Atoms {
		id := AtomID(len(c.atoms))
		a.ID = id
		c.atoms = append(c.atoms, a)
		c.atomByName[a.Name()] = id
	}
	for _, e := range b.Edges {
		id := EdgeID(len(c.edges))
		e.ID = id
		c.edges = append(c.edges, e)
		c.edgeByName[e.Name()] = id
	}
	return c, nil
}
