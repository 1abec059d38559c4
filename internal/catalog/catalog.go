// Package catalog holds the immutable, versioned CCAM code catalog.
// A Catalog is built once per data version by the loader and shared
// read-only across concurrent queries; nothing mutates it afterwards.
package catalog

import (
	"fmt"
	"sort"

	"github.com/t2a/ccam/internal/model"
	"github.com/t2a/ccam/internal/normalize"
)

type Catalog struct {
	version string
	byCode  map[string]*model.Code
	ordered []string // ascending identifiers, for deterministic iteration
	active  int
}

// New builds a catalog from the rows supplied by the ingestion pipeline.
// Code identifiers are normalized and must be unique and well-formed.
func New(version string, codes []model.Code) (*Catalog, error) {
	c := &Catalog{
		version: version,
		byCode:  make(map[string]*model.Code, len(codes)),
		ordered: make([]string, 0, len(codes)),
	}
	for i := range codes {
		code := codes[i]
		code.Code = normalize.Code(code.Code)
		if !normalize.ValidCode(code.Code) {
			return nil, fmt.Errorf("malformed code identifier %q", codes[i].Code)
		}
		if _, dup := c.byCode[code.Code]; dup {
			return nil, fmt.Errorf("duplicate code identifier %s", code.Code)
		}
		c.byCode[code.Code] = &code
		c.ordered = append(c.ordered, code.Code)
		if code.Active() {
			c.active++
		}
	}
	sort.Strings(c.ordered)
	return c, nil
}

// Version returns the data-version token this catalog was loaded under.
func (c *Catalog) Version() string { return c.version }

// Get returns the code entry for id, including retired codes.
func (c *Catalog) Get(id string) (*model.Code, bool) {
	code, ok := c.byCode[normalize.Code(id)]
	return code, ok
}

// Len returns the total number of codes, retired included.
func (c *Catalog) Len() int { return len(c.byCode) }

// ActiveLen returns the number of active codes.
func (c *Catalog) ActiveLen() int { return c.active }

// Codes returns all entries in ascending identifier order.
func (c *Catalog) Codes() []*model.Code {
	out := make([]*model.Code, len(c.ordered))
	for i, id := range c.ordered {
		out[i] = c.byCode[id]
	}
	return out
}

// Chapter returns the chapter (anatomical region) tag for id, or "".
func (c *Catalog) Chapter(id string) string {
	if code, ok := c.byCode[id]; ok {
		return code.Chapter
	}
	return ""
}
