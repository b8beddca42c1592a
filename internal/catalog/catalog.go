// Package catalog holds the component metadata that completion is driven by.
// A Catalog describes every tag of a component library together with its
// attributes, enumerated attribute values and required sub-tags. It is loaded
// once and never mutated afterwards, so it is safe for concurrent readers.
package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformedCatalog is returned (wrapped) for any structural problem in
// catalog data: bad syntax, dangling sub-tag references or sub-tag cycles.
var ErrMalformedCatalog = errors.New("malformed catalog")

// Attribute types with special meaning to completion
const (
	TypeString  = "string"
	TypeBoolean = "boolean"
	TypeMethod  = "method"
	TypeFlag    = "flag"
	TypeNumber  = "number"
)

// Catalog is the ordered set of components of one library
type Catalog struct {
	// Library is the display name of the component library
	Library string

	order      []string
	components map[string]*Component
}

// Component describes a single tag
type Component struct {
	Name        string
	Description string
	DocLink     string

	// Subtags are inserted, nested and in order, whenever this tag is inserted
	Subtags []string

	attributes []*Attribute
	byName     map[string]*Attribute
}

// Attribute describes one attribute of a component
type Attribute struct {
	Name        string
	Type        string
	Required    bool
	Default     string
	Description string

	// Values enumerates the accepted literals, in declaration order
	Values []Value
}

// Value is one enumerated attribute literal
type Value struct {
	Literal     string
	Description string
}

// New creates an empty catalog for the named library
func New(library string) *Catalog {
	return &Catalog{
		Library:    library,
		components: make(map[string]*Component),
	}
}

// Len returns the number of components
func (c *Catalog) Len() int {
	return len(c.order)
}

// Tags returns the tag names in catalog order
func (c *Catalog) Tags() []string {
	tags := make([]string, len(c.order))
	copy(tags, c.order)
	return tags
}

// Component looks up a tag
func (c *Catalog) Component(tag string) (*Component, bool) {
	comp, ok := c.components[tag]
	return comp, ok
}

// Attribute looks up an attribute of a tag
func (c *Catalog) Attribute(tag, attr string) (*Attribute, bool) {
	comp, ok := c.components[tag]
	if !ok {
		return nil, false
	}
	return comp.Attribute(attr)
}

// Add appends a component. Empty and duplicate names are rejected. Sub-tag
// references are not checked until Validate runs.
func (c *Catalog) Add(comp *Component) error {
	if comp.Name == "" {
		return fmt.Errorf("%w: empty component name", ErrMalformedCatalog)
	}
	if _, dup := c.components[comp.Name]; dup {
		return fmt.Errorf("%w: duplicate component %q", ErrMalformedCatalog, comp.Name)
	}
	c.order = append(c.order, comp.Name)
	c.components[comp.Name] = comp
	return nil
}

// Attributes returns the attributes in declaration order
func (comp *Component) Attributes() []*Attribute {
	return comp.attributes
}

// Attribute looks up an attribute by name
func (comp *Component) Attribute(name string) (*Attribute, bool) {
	attr, ok := comp.byName[name]
	return attr, ok
}

// RequiredAttributes returns the attributes flagged as required, in
// declaration order
func (comp *Component) RequiredAttributes() []*Attribute {
	var required []*Attribute
	for _, attr := range comp.attributes {
		if attr.Required {
			required = append(required, attr)
		}
	}
	return required
}

// AddAttribute appends an attribute, rejecting duplicate names
func (comp *Component) AddAttribute(attr *Attribute) error {
	if _, dup := comp.byName[attr.Name]; dup {
		return fmt.Errorf("%w: duplicate attribute %q on %q", ErrMalformedCatalog, attr.Name, comp.Name)
	}
	if comp.byName == nil {
		comp.byName = make(map[string]*Attribute)
	}
	comp.attributes = append(comp.attributes, attr)
	comp.byName[attr.Name] = attr
	return nil
}
