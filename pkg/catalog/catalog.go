// Package catalog holds the static module catalogs of each platform and resolves
// module names against them.
package catalog

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/dukex/blueprint/pkg/platform"
	"github.com/mohae/deepcopy"
)

var (
	ErrDuplicateModule = errors.New("duplicate module name")
	ErrAliasConflict   = errors.New("alias conflicts with another module")
)

// Entry describes one known building block of a platform.
type Entry struct {
	CanonicalName string         `json:"canonicalName"          yaml:"name"        validate:"required"`
	Category      string         `json:"category"               yaml:"category"    validate:"required"`
	Description   string         `json:"description"            yaml:"description"`
	Kind          string         `json:"kind"                   yaml:"kind"        validate:"required"`
	Trigger       bool           `json:"trigger"                yaml:"trigger"`
	Version       int            `json:"version"                yaml:"version"     validate:"gte=0"`
	KnownAliases  []string       `json:"knownAliases,omitempty" yaml:"aliases"     validate:"dive,required"`
	Parameters    map[string]any `json:"parameters,omitempty"   yaml:"parameters"` // JSON schema of the node parameters
}

func (e Entry) clone() Entry {
	e.KnownAliases = slices.Clone(e.KnownAliases)
	if e.Parameters != nil {
		e.Parameters, _ = deepcopy.Copy(e.Parameters).(map[string]any)
	}

	return e
}

// DefaultVersion is the version new nodes of this module get.
func (e Entry) DefaultVersion() int {
	if e.Version <= 0 {
		return 1
	}

	return e.Version
}

// Resolution is the outcome of resolving a module name.
type Resolution struct {
	Valid         bool   `json:"valid"`
	CanonicalName string `json:"canonicalName,omitempty"`
	Category      string `json:"category,omitempty"`
}

// Suggested reports whether the resolution carries a canonical suggestion.
func (r Resolution) Suggested() bool {
	return !r.Valid && r.CanonicalName != ""
}

// Catalog is the immutable, indexed module catalog of one platform.
type Catalog struct {
	platform   platform.Platform
	entries    []Entry
	byName     map[string]int
	byFolded   map[string]int
	aliases    map[string]int
	categories map[string][]int
	kinds      map[string]int
}

// New indexes entries. The catalog keeps its own copy of the entries.
func New(p platform.Platform, entries []Entry) (*Catalog, error) {
	c := &Catalog{
		platform:   p,
		entries:    make([]Entry, 0, len(entries)),
		byName:     make(map[string]int, len(entries)),
		byFolded:   make(map[string]int, len(entries)),
		aliases:    make(map[string]int),
		categories: make(map[string][]int),
		kinds:      make(map[string]int),
	}

	for _, e := range entries {
		if _, exists := c.byName[e.CanonicalName]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateModule, e.CanonicalName)
		}

		idx := len(c.entries)
		c.entries = append(c.entries, e.clone())
		c.byName[e.CanonicalName] = idx
		c.byFolded[strings.ToLower(e.CanonicalName)] = idx
		c.categories[e.Category] = append(c.categories[e.Category], idx)

		if _, exists := c.kinds[e.Kind]; !exists {
			c.kinds[e.Kind] = idx
		}
	}

	for idx, e := range c.entries {
		for _, alias := range e.KnownAliases {
			key := strings.ToLower(alias)
			if _, clash := c.byFolded[key]; clash {
				return nil, fmt.Errorf("%w: alias %q of %q names a canonical module", ErrAliasConflict, alias, e.CanonicalName)
			}

			if other, clash := c.aliases[key]; clash && other != idx {
				return nil, fmt.Errorf("%w: alias %q claimed by %q and %q",
					ErrAliasConflict, alias, c.entries[other].CanonicalName, e.CanonicalName)
			}

			c.aliases[key] = idx
		}
	}

	return c, nil
}

func (c *Catalog) Platform() platform.Platform {
	return c.platform
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// Resolve checks a module name against the catalog. A canonical name is valid;
// an alias or a canonical name in the wrong case is invalid but carries the
// canonical suggestion; anything else is invalid without a suggestion.
func (c *Catalog) Resolve(name string) Resolution {
	if idx, ok := c.byName[name]; ok {
		return Resolution{Valid: true, CanonicalName: name, Category: c.entries[idx].Category}
	}

	folded := strings.ToLower(strings.TrimSpace(name))

	if idx, ok := c.aliases[folded]; ok {
		return c.suggest(idx)
	}

	if idx, ok := c.byFolded[folded]; ok {
		return c.suggest(idx)
	}

	return Resolution{}
}

func (c *Catalog) suggest(idx int) Resolution {
	e := c.entries[idx]

	return Resolution{CanonicalName: e.CanonicalName, Category: e.Category}
}

// Lookup returns the entry with exactly this canonical name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}

	return c.entries[idx].clone(), true
}

// LookupAny returns the entry for a canonical name or any known alias of it.
func (c *Catalog) LookupAny(name string) (Entry, bool) {
	if e, ok := c.Lookup(name); ok {
		return e, true
	}

	res := c.Resolve(name)
	if !res.Suggested() {
		return Entry{}, false
	}

	return c.Lookup(res.CanonicalName)
}

// ByKind returns the preferred module for a canonical kind, which is the first
// catalogued entry of that kind.
func (c *Catalog) ByKind(kind string) (Entry, bool) {
	idx, ok := c.kinds[kind]
	if !ok {
		return Entry{}, false
	}

	return c.entries[idx].clone(), true
}

// IsTrigger reports whether name resolves to a trigger-capable module.
func (c *Catalog) IsTrigger(name string) bool {
	e, ok := c.LookupAny(name)

	return ok && e.Trigger
}

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	return slices.Sorted(maps.Keys(c.categories))
}

// ByCategory returns the entries of a category in catalog order.
func (c *Catalog) ByCategory(category string) []Entry {
	indexes := c.categories[category]
	out := make([]Entry, 0, len(indexes))

	for _, idx := range indexes {
		out = append(out, c.entries[idx].clone())
	}

	return out
}

// Entries yields every entry in catalog order.
func (c *Catalog) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range c.entries {
			if !yield(e.clone()) {
				return
			}
		}
	}
}

// Search lazily yields the entries whose canonical name or description contains
// keyword, ignoring case, in catalog order. An empty keyword matches everything.
func (c *Catalog) Search(keyword string) iter.Seq[Entry] {
	needle := strings.ToLower(strings.TrimSpace(keyword))

	return func(yield func(Entry) bool) {
		for _, e := range c.entries {
			if !strings.Contains(strings.ToLower(e.CanonicalName), needle) &&
				!strings.Contains(strings.ToLower(e.Description), needle) {
				continue
			}

			if !yield(e.clone()) {
				return
			}
		}
	}
}
