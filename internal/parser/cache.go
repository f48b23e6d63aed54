package parser

import (
	"github.com/cellengine/cellengine/internal/arena"
	"github.com/cellengine/cellengine/internal/atom"
)

// Cache maps a formula atom to its parsed tree, keyed by atom identity
// (spec §4.4). A parse-cache entry is sheet-independent: column-name
// resolution happens at evaluation time, so two sheets sharing one cached
// tree correctly diverge downstream (spec §9).
type Cache struct {
	arena   *arena.Arena
	entries map[atom.Atom]*arena.Node
}

// NewCache creates a parse cache backed by its own long-lived arena.
func NewCache() *Cache {
	return &Cache{
		arena:   arena.New(),
		entries: make(map[atom.Atom]*arena.Node),
	}
}

// Parse returns the expression tree for formula (interned as an atom),
// parsing and caching it on first use. The returned node belongs to the
// cache's own arena and must be cloned (see arena.Clone) before it is
// handed to the evaluator.
func (c *Cache) Parse(formula atom.Atom, table *atom.Table) *arena.Node {
	if n, ok := c.entries[formula]; ok {
		return n
	}
	src := table.String(formula)
	n := Parse(src, table, c.arena)
	c.entries[formula] = n
	return n
}

// Len reports how many distinct formulas are cached.
func (c *Cache) Len() int { return len(c.entries) }
