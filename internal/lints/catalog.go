// Package lints holds the built-in plugins and the catalog that resolves
// plugin identifiers to their factories.
package lints

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gnolang/plint/internal/plugin"
)

// ErrUnknownPlugin is returned when an identifier matches no factory.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Catalog maps plugin identifiers to factories.
type Catalog map[string]plugin.Factory

// Default returns a fresh catalog of every built-in plugin.
func Default() Catalog {
	return Catalog{
		EmptyIfName:           NewEmptyIf,
		UselessBreakName:      NewUselessBreak,
		NoInferrableTypesName: NewNoInferrableTypes,
		CallStatsName:         NewCallStats,
		BanCallsName:          NewBanCalls,
	}
}

// DefaultNames lists the plugins enabled when no configuration says
// otherwise, in load order. call-stats runs before ban-calls so the latter
// can read what the former publishes.
func DefaultNames() []string {
	return []string{
		EmptyIfName,
		UselessBreakName,
		NoInferrableTypesName,
		CallStatsName,
		BanCallsName,
	}
}

// Resolve returns the factory registered under id.
func (c Catalog) Resolve(id string) (plugin.Factory, error) {
	f, ok := c[id]
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, id)
	}
	return f, nil
}

// Names returns the identifiers in the catalog, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
