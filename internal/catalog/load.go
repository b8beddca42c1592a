package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcozac/go-jsonc"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// LoadFile loads a catalog from disk. Files ending in .yaml or .yml are read
// as YAML, everything else as JSON (comments allowed).
func LoadFile(library, path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(library, data)
	default:
		return LoadJSON(library, data)
	}
}

// LoadJSON parses a JSON catalog. Line and block comments are accepted.
// Object key order is significant: it defines the completion order of tags,
// attributes and values.
func LoadJSON(library string, data []byte) (*Catalog, error) {
	// gjson walks raw bytes in document order; a map would lose it
	var raw json.RawMessage
	if err := jsonc.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object of components", ErrMalformedCatalog)
	}

	c := New(library)
	var loadErr error
	root.ForEach(func(key, value gjson.Result) bool {
		comp, err := componentFromJSON(key.String(), value)
		if err == nil {
			err = c.Add(comp)
		}
		if err != nil {
			loadErr = err
			return false
		}
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}

	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func componentFromJSON(name string, value gjson.Result) (*Component, error) {
	if !value.IsObject() {
		return nil, fmt.Errorf("%w: component %q must be an object", ErrMalformedCatalog, name)
	}

	comp := &Component{
		Name:        name,
		Description: value.Get("description").String(),
		DocLink:     value.Get("docLink").String(),
	}

	var attrErr error
	value.Get("attributes").ForEach(func(key, attrValue gjson.Result) bool {
		attr := &Attribute{
			Name:        key.String(),
			Type:        attrValue.Get("type").String(),
			Required:    attrValue.Get("isRequired").Bool(),
			Description: attrValue.Get("description").String(),
		}
		if def := attrValue.Get("default"); def.Exists() && def.Type != gjson.Null {
			attr.Default = def.String()
		}

		values := attrValue.Get("values")
		switch {
		case values.IsObject():
			values.ForEach(func(lit, meta gjson.Result) bool {
				attr.Values = append(attr.Values, Value{
					Literal:     lit.String(),
					Description: meta.Get("description").String(),
				})
				return true
			})
		case values.IsArray():
			for _, lit := range values.Array() {
				attr.Values = append(attr.Values, Value{Literal: lit.String()})
			}
		}

		if attrErr = comp.AddAttribute(attr); attrErr != nil {
			return false
		}
		return true
	})
	if attrErr != nil {
		return nil, attrErr
	}

	for _, sub := range value.Get("subtags").Array() {
		comp.Subtags = append(comp.Subtags, sub.String())
	}

	return comp, nil
}

type componentDoc struct {
	Description string    `yaml:"description"`
	DocLink     string    `yaml:"docLink"`
	Attributes  yaml.Node `yaml:"attributes"`
	Subtags     []string  `yaml:"subtags"`
}

type attributeDoc struct {
	Type        string    `yaml:"type"`
	IsRequired  bool      `yaml:"isRequired"`
	Default     yaml.Node `yaml:"default"`
	Description string    `yaml:"description"`
	Values      yaml.Node `yaml:"values"`
}

// LoadYAML parses a YAML catalog with the same shape as the JSON form.
// Mapping order defines completion order.
func LoadYAML(library string, data []byte) (*Catalog, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}

	top := &root
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping of components", ErrMalformedCatalog)
	}

	c := New(library)
	for i := 0; i+1 < len(top.Content); i += 2 {
		name := top.Content[i].Value

		var doc componentDoc
		if err := top.Content[i+1].Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: component %q: %v", ErrMalformedCatalog, name, err)
		}

		comp := &Component{
			Name:        name,
			Description: doc.Description,
			DocLink:     doc.DocLink,
			Subtags:     doc.Subtags,
		}

		if err := attributesFromYAML(comp, &doc.Attributes); err != nil {
			return nil, err
		}
		if err := c.Add(comp); err != nil {
			return nil, err
		}
	}

	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func attributesFromYAML(comp *Component, node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: attributes of %q must be a mapping", ErrMalformedCatalog, comp.Name)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var doc attributeDoc
		if err := node.Content[i+1].Decode(&doc); err != nil {
			return fmt.Errorf("%w: attribute %q of %q: %v", ErrMalformedCatalog, name, comp.Name, err)
		}

		attr := &Attribute{
			Name:        name,
			Type:        doc.Type,
			Required:    doc.IsRequired,
			Description: doc.Description,
		}
		if doc.Default.Kind == yaml.ScalarNode && doc.Default.Tag != "!!null" {
			attr.Default = doc.Default.Value
		}

		switch doc.Values.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(doc.Values.Content); j += 2 {
				var meta struct {
					Description string `yaml:"description"`
				}
				// a bare key with no metadata decodes to the zero value
				_ = doc.Values.Content[j+1].Decode(&meta)
				attr.Values = append(attr.Values, Value{
					Literal:     doc.Values.Content[j].Value,
					Description: meta.Description,
				})
			}
		case yaml.SequenceNode:
			for _, item := range doc.Values.Content {
				attr.Values = append(attr.Values, Value{Literal: item.Value})
			}
		}

		if err := comp.AddAttribute(attr); err != nil {
			return err
		}
	}
	return nil
}
