package beans

import (
	"fmt"
	"log/slog"
)

// GraphWalker follows the parent chain of a declaration, across units that
// share a configuration set, and accumulates the directly declared class of
// every declaration on the chain.
type GraphWalker struct {
	registry     Registry
	introspector Introspector
	logger       *slog.Logger
}

// NewGraphWalker returns a GraphWalker.
func NewGraphWalker(registry Registry, introspector Introspector, logger *slog.Logger) *GraphWalker {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphWalker{registry: registry, introspector: introspector, logger: logger}
}

// CollectTypes returns every implementation type reachable from the
// declaration described by declID, className and parentID in unit. Types are
// returned in discovery order without duplicates. Each declaration id is
// visited at most once, so cyclic parent chains terminate with the types
// accumulated before the cycle.
func (w *GraphWalker) CollectTypes(declID, className, parentID, unit string) ([]string, error) {
	var (
		types   = newOrderedSet()
		visited = map[string]bool{}
	)
	if declID != "" {
		visited[declID] = true
	}

	for {
		if className != "" {
			t, err := w.introspector.ResolveType(className)
			if err != nil {
				return types.items, fmt.Errorf("resolve type %q: %w", className, err)
			}
			if t != "" {
				types.add(t)
			} else {
				w.logger.With("class", className, "unit", unit).Debug("class not found while walking parents")
			}
		}

		if parentID == "" || visited[parentID] {
			break
		}
		visited[parentID] = true

		parent, err := lookupDeclaration(w.registry, unit, parentID)
		if err != nil {
			return types.items, err
		}
		if parent == nil {
			w.logger.With("parent", parentID, "unit", unit).Debug("parent bean not found")
			break
		}
		className, parentID, unit = parent.ClassName, parent.ParentID, parent.Unit
	}

	return types.items, nil
}

// lookupDeclaration finds id in unit first, then among declarations reachable
// through the unit's configuration sets. The first match wins.
func lookupDeclaration(registry Registry, unit, id string) (*Declaration, error) {
	if registry == nil || id == "" {
		return nil, nil
	}
	local, err := registry.FindDeclaration(unit, id)
	if err != nil {
		return nil, fmt.Errorf("find bean %q in %s: %w", id, unit, err)
	}
	if local != nil {
		return local, nil
	}
	reachable, err := registry.ReachableViaConfigSets(unit)
	if err != nil {
		return nil, fmt.Errorf("config sets of %s: %w", unit, err)
	}
	for _, d := range reachable {
		if d != nil && d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

// orderedSet keeps insertion order and drops duplicates.
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(items ...string) {
	for _, item := range items {
		if item == "" || s.seen[item] {
			continue
		}
		s.seen[item] = true
		s.items = append(s.items, item)
	}
}
