// Package catalog is the static registry of loadable models. A Descriptor is
// immutable once the catalog is built; everything downstream (scheduler,
// residency guard, generation pipeline) identifies a model by its Filename.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Category selects the prompt family for a model.
type Category string

const (
	CategoryHealth   Category = "health"
	CategoryWellness Category = "wellness"
)

// ParseCategory accepts the lowercase or uppercase spelling.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryHealth:
		return CategoryHealth, nil
	case CategoryWellness:
		return CategoryWellness, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// Perspective drives prompt phrasing, target sentence count and stop behavior.
type Perspective string

const (
	PerspectiveSelf       Perspective = "self"
	PerspectiveOther      Perspective = "other"
	PerspectiveOtherShort Perspective = "other_short"
)

// ParsePerspective accepts "self", "other", "other_short" (case-insensitive,
// '-' allowed in place of '_').
func ParsePerspective(s string) (Perspective, error) {
	v := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Perspective(v) {
	case PerspectiveSelf:
		return PerspectiveSelf, nil
	case PerspectiveOther:
		return PerspectiveOther, nil
	case PerspectiveOtherShort:
		return PerspectiveOtherShort, nil
	}
	return "", fmt.Errorf("unknown perspective: %q", s)
}

// Priority is the default scheduling priority for a perspective.
// Lower values are served first.
func (p Perspective) Priority() int {
	switch p {
	case PerspectiveSelf:
		return 1
	case PerspectiveOther:
		return 2
	case PerspectiveOtherShort:
		return 3
	}
	return 100
}

// TargetSentences is how many sentences a generation for p aims to produce.
func (p Perspective) TargetSentences() int {
	switch p {
	case PerspectiveOther:
		return 3
	case PerspectiveOtherShort:
		return 10
	}
	return 1
}

// Descriptor identifies a loadable model. Filename is the unique key.
type Descriptor struct {
	Filename    string      `json:"filename" yaml:"filename" toml:"filename"`
	DisplayName string      `json:"display_name" yaml:"display_name" toml:"display_name"`
	Category    Category    `json:"category" yaml:"category" toml:"category"`
	Perspective Perspective `json:"perspective" yaml:"perspective" toml:"perspective"`
	Priority    int         `json:"priority" yaml:"priority" toml:"priority"`
}

// Same reports whether d and o refer to the same model file.
func (d Descriptor) Same(o Descriptor) bool { return d.Filename == o.Filename }

func (d Descriptor) String() string {
	if d.DisplayName != "" {
		return d.DisplayName + " (" + d.Filename + ")"
	}
	return d.Filename
}

// NewDescriptor builds a descriptor whose priority is derived from its perspective.
func NewDescriptor(filename, displayName string, c Category, p Perspective) Descriptor {
	return Descriptor{
		Filename:    filename,
		DisplayName: displayName,
		Category:    c,
		Perspective: p,
		Priority:    p.Priority(),
	}
}

// Catalog is an ordered, read-only set of descriptors keyed by filename.
type Catalog struct {
	list  []Descriptor
	index map[string]int
}

// unknownModelError is returned by Lookup for filenames not in the catalog.
type unknownModelError struct{ filename string }

func (e unknownModelError) Error() string { return "unknown model: " + e.filename }

// ErrUnknownModel constructs the error Lookup returns for name.
func ErrUnknownModel(name string) error { return unknownModelError{filename: name} }

// IsUnknownModel reports whether err came from a failed catalog lookup.
func IsUnknownModel(err error) bool {
	var e unknownModelError
	return errors.As(err, &e)
}

// New validates descriptors and builds a catalog. Filenames must be unique and
// non-empty; a zero priority is replaced by the perspective default.
func New(ds []Descriptor) (*Catalog, error) {
	c := &Catalog{list: make([]Descriptor, 0, len(ds)), index: make(map[string]int, len(ds))}
	for i, d := range ds {
		d.Filename = strings.TrimSpace(d.Filename)
		if d.Filename == "" {
			return nil, fmt.Errorf("catalog entry %d: empty filename", i)
		}
		if _, dup := c.index[d.Filename]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate filename %q", i, d.Filename)
		}
		cat, err := ParseCategory(string(d.Category))
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", d.Filename, err)
		}
		per, err := ParsePerspective(string(d.Perspective))
		if err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", d.Filename, err)
		}
		d.Category, d.Perspective = cat, per
		if d.Priority == 0 {
			d.Priority = per.Priority()
		}
		if d.DisplayName == "" {
			d.DisplayName = d.Filename
		}
		c.index[d.Filename] = len(c.list)
		c.list = append(c.list, d)
	}
	return c, nil
}

// Lookup returns the descriptor registered under filename.
func (c *Catalog) Lookup(filename string) (Descriptor, error) {
	if c != nil {
		if i, ok := c.index[filename]; ok {
			return c.list[i], nil
		}
	}
	return Descriptor{}, unknownModelError{filename: filename}
}

// For returns the first descriptor matching category and perspective.
func (c *Catalog) For(cat Category, p Perspective) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}
	for _, d := range c.list {
		if d.Category == cat && d.Perspective == p {
			return d, true
		}
	}
	return Descriptor{}, false
}

// All returns a copy of the descriptors in catalog order.
func (c *Catalog) All() []Descriptor {
	if c == nil {
		return nil
	}
	out := make([]Descriptor, len(c.list))
	copy(out, c.list)
	return out
}

// Len is the number of descriptors.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.list)
}
