// Package catalog holds the read-only set of named point patterns and
// matches them against detected sources.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"skymatch/pkg/geometry"
)

// ErrInvalidCatalog is returned when catalog data cannot be parsed or is
// inconsistent.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Pattern is one named point pattern.
type Pattern struct {
	Name   string             `json:"name"`
	Index  int                `json:"index"`
	Points []geometry.Point2D `json:"points"`
}

// Catalog is an immutable list of patterns ordered by index 0..N-1.
type Catalog struct {
	patterns []Pattern
}

// document is the on-disk catalog layout. A missing index means the
// entry's position in the list.
type document struct {
	Patterns []struct {
		Name   string             `json:"name"`
		Index  *int               `json:"index"`
		Points []geometry.Point2D `json:"points"`
	} `json:"patterns"`
}

// Load reads a catalog JSON file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a catalog document from r.
func Decode(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	patterns := make([]Pattern, len(doc.Patterns))
	for i, e := range doc.Patterns {
		idx := i
		if e.Index != nil {
			idx = *e.Index
		}
		patterns[i] = Pattern{Name: e.Name, Index: idx, Points: e.Points}
	}
	return New(patterns)
}

// New builds a catalog from patterns. Indices must form 0..N-1 in any
// order; empty names are filled from the constellation table.
func New(patterns []Pattern) (*Catalog, error) {
	out := make([]Pattern, len(patterns))
	copy(out, patterns)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Index < out[b].Index })

	for i := range out {
		if out[i].Index != i {
			return nil, fmt.Errorf("%w: expected index %d, found %d", ErrInvalidCatalog, i, out[i].Index)
		}
		if out[i].Name == "" {
			out[i].Name = DisplayName(i)
		}
		pts := make([]geometry.Point2D, len(out[i].Points))
		copy(pts, out[i].Points)
		out[i].Points = pts
	}
	return &Catalog{patterns: out}, nil
}

var (
	sharedOnce sync.Once
	shared     *Catalog
	sharedErr  error
)

// Shared loads the catalog at path once per process and returns the same
// instance on every later call, whatever path is passed.
func Shared(path string) (*Catalog, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Load(path)
	})
	return shared, sharedErr
}

// Len returns the number of patterns.
func (c *Catalog) Len() int {
	return len(c.patterns)
}

// At returns the pattern with the given index.
func (c *Catalog) At(i int) Pattern {
	return c.patterns[i]
}

// Entries returns the patterns in index order. Callers must not modify the
// returned point slices.
func (c *Catalog) Entries() []Pattern {
	out := make([]Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Lookup finds the first pattern, in index order, whose name contains name
// ignoring case.
func (c *Catalog) Lookup(name string) (Pattern, bool) {
	needle := strings.ToLower(name)
	for _, p := range c.patterns {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			return p, true
		}
	}
	return Pattern{}, false
}
