package beans

import (
	"fmt"
	"log/slog"
	"strings"
)

// NestedPropertySeparator separates the segments of a property path.
const NestedPropertySeparator = "."

// PropertyPathStep pairs one path segment with the accessor it resolved to.
// Type is the accessor's return type for a getter and its parameter type
// for a setter; it seeds the next step.
type PropertyPathStep struct {
	Segment  string `json:"segment"`
	Accessor Member `json:"accessor"`
	Type     string `json:"type,omitempty"`
}

// PropertyPathResolver resolves dotted property paths against candidate
// implementation types, one hop at a time.
type PropertyPathResolver struct {
	introspector Introspector
	logger       *slog.Logger
}

// NewPropertyPathResolver returns a PropertyPathResolver.
func NewPropertyPathResolver(introspector Introspector, logger *slog.Logger) *PropertyPathResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyPathResolver{introspector: introspector, logger: logger}
}

// ResolveWrite returns the setter denoted by path, or nil. Every segment
// but the last must be a readable property; the last must be writable.
// When several candidate branches resolve, the first one found wins.
func (r *PropertyPathResolver) ResolveWrite(path []string, candidates []string) (*Member, error) {
	all, err := r.ResolveWriteAll(path, candidates)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

// ResolveWriteAll returns every setter path can denote across all candidate
// types. Ambiguous segments are not disambiguated.
func (r *PropertyPathResolver) ResolveWriteAll(path []string, candidates []string) ([]Member, error) {
	out := &memberSet{seen: map[string]bool{}}
	if err := r.collectWrites(path, 0, candidates, out); err != nil {
		return out.items, err
	}
	return out.items, nil
}

func (r *PropertyPathResolver) collectWrites(path []string, index int, candidates []string, out *memberSet) error {
	if len(path) == 0 || index >= len(path) {
		return nil
	}
	property := PropertyName(path[index])
	if property == "" {
		return nil
	}

	if len(path) > index+1 {
		for _, t := range candidates {
			next, err := r.readHop(t, property)
			if err != nil {
				return err
			}
			if next == "" {
				continue
			}
			if err = r.collectWrites(path, index+1, []string{next}, out); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range candidates {
		setter, err := r.introspector.FindWritableAccessor(t, property)
		if err != nil {
			return fmt.Errorf("writable property %q on %s: %w", property, t, err)
		}
		if setter != nil {
			out.add(*setter)
		}
	}
	return nil
}

// readHop returns the return type of the getter for property on typeName, or
// "" when there is no getter or its type is unknown.
func (r *PropertyPathResolver) readHop(typeName, property string) (string, error) {
	getter, err := r.introspector.FindReadableAccessor(typeName, property)
	if err != nil {
		return "", fmt.Errorf("readable property %q on %s: %w", property, typeName, err)
	}
	if getter == nil {
		return "", nil
	}
	next, err := r.introspector.DeclaredReturnType(getter)
	if err != nil {
		return "", fmt.Errorf("return type of %s: %w", getter, err)
	}
	if next == "" {
		r.logger.With("type", typeName, "property", property).Debug("getter return type unknown")
	}
	return next, nil
}

// ResolveReadChain resolves every segment of path to a getter. The first
// complete chain found is returned; if none completes, the longest partial
// chain is.
func (r *PropertyPathResolver) ResolveReadChain(path []string, candidates []string) ([]PropertyPathStep, error) {
	return r.resolveChain(path, 0, candidates, false)
}

// ResolveAccessorChain resolves the non-terminal segments of path to getters
// and the terminal segment to a setter, as used for navigating an
// assignment path.
func (r *PropertyPathResolver) ResolveAccessorChain(path []string, candidates []string) ([]PropertyPathStep, error) {
	return r.resolveChain(path, 0, candidates, true)
}

func (r *PropertyPathResolver) resolveChain(path []string, index int, candidates []string, terminalWrite bool) ([]PropertyPathStep, error) {
	if index >= len(path) {
		return nil, nil
	}
	property := PropertyName(path[index])
	if property == "" {
		return nil, nil
	}
	write := terminalWrite && index == len(path)-1

	var best []PropertyPathStep
	for _, t := range candidates {
		step, ok, err := r.step(t, path[index], property, write)
		if err != nil {
			return best, err
		}
		if !ok {
			continue
		}
		chain := []PropertyPathStep{step}
		if index+1 < len(path) && step.Type != "" {
			rest, err := r.resolveChain(path, index+1, []string{step.Type}, terminalWrite)
			if err != nil {
				return best, err
			}
			chain = append(chain, rest...)
		}
		if len(chain) == len(path)-index {
			return chain, nil
		}
		if len(chain) > len(best) {
			best = chain
		}
	}
	return best, nil
}

func (r *PropertyPathResolver) step(typeName, segment, property string, write bool) (PropertyPathStep, bool, error) {
	var (
		accessor *Member
		err      error
	)
	if write {
		accessor, err = r.introspector.FindWritableAccessor(typeName, property)
	} else {
		accessor, err = r.introspector.FindReadableAccessor(typeName, property)
	}
	if err != nil {
		return PropertyPathStep{}, false, fmt.Errorf("property %q on %s: %w", property, typeName, err)
	}
	if accessor == nil {
		return PropertyPathStep{}, false, nil
	}

	var next string
	if write {
		next, err = r.introspector.DeclaredParamType(accessor, 0)
	} else {
		next, err = r.introspector.DeclaredReturnType(accessor)
	}
	if err != nil {
		return PropertyPathStep{}, false, fmt.Errorf("type of %s: %w", accessor, err)
	}
	return PropertyPathStep{Segment: segment, Accessor: *accessor, Type: next}, true, nil
}

// SplitPropertyPath splits a dotted property path into its segments.
// Separators inside [...] keys do not split. An empty path has no segments.
func SplitPropertyPath(path string) []string {
	if path == "" {
		return nil
	}
	var (
		segments []string
		depth    int
		start    int
	)
	for i, r := range path {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				segments = append(segments, path[start:i])
				start = i + 1
			}
		}
	}
	return append(segments, path[start:])
}

// PropertyName strips an index or map key from a path segment:
// "items[0]" becomes "items".
func PropertyName(segment string) string {
	if i := strings.IndexByte(segment, '['); i >= 0 {
		return segment[:i]
	}
	return segment
}

// PathAtCursor returns the segments of target up to and including the one
// under cursor, plus the offset and length of that segment within target.
// ok is false when the cursor is at either end of target or directly after
// a separator.
func PathAtCursor(target string, cursor int) (segments []string, offset, length int, ok bool) {
	if cursor <= 0 || cursor >= len(target) {
		return nil, 0, len(target), false
	}
	before := target[:cursor]
	if strings.HasSuffix(before, NestedPropertySeparator) {
		return nil, 0, len(target), false
	}
	offset = strings.LastIndex(before, NestedPropertySeparator) + 1

	isSep := func(r rune) bool { return r == '.' }
	count := len(strings.FieldsFunc(before, isSep))
	all := strings.FieldsFunc(target, isSep)
	if count == 0 || count > len(all) {
		return nil, 0, len(target), false
	}
	segments = all[:count]
	return segments, offset, len(segments[count-1]), true
}

type memberSet struct {
	seen  map[string]bool
	items []Member
}

func (s *memberSet) add(m Member) {
	key := m.String()
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items = append(s.items, m)
}
