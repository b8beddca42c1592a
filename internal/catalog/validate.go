package catalog

import (
	"fmt"
	"strings"
)

// Validate checks that every sub-tag reference resolves to a component and
// that the sub-tag graph has no cycles. Loaders call it before returning.
func Validate(c *Catalog) error {
	for _, name := range c.order {
		comp := c.components[name]
		for _, sub := range comp.Subtags {
			if _, ok := c.components[sub]; !ok {
				return fmt.Errorf("%w: %q lists unknown sub-tag %q", ErrMalformedCatalog, name, sub)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.order))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: sub-tag cycle %s", ErrMalformedCatalog, strings.Join(append(path, name), " -> "))
		case done:
			return nil
		}

		state[name] = visiting
		for _, sub := range c.components[name].Subtags {
			if err := visit(sub, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range c.order {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
