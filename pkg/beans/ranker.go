package beans

import (
	"fmt"
	"sort"
	"strings"
)

// TypeMatchRanker scores completion candidates by assignability of their
// resolved type to a set of required types.
type TypeMatchRanker struct {
	introspector Introspector
}

// NewTypeMatchRanker returns a TypeMatchRanker.
func NewTypeMatchRanker(introspector Introspector) *TypeMatchRanker {
	return &TypeMatchRanker{introspector: introspector}
}

// Rank returns TypeMatch when the flattened supertypes of resolved intersect
// required, PlainMatch otherwise. With no required types every candidate is
// a PlainMatch. An unresolved candidate cannot match a type. resolved may be
// a class name as written in a declaration (binary, simple or
// module-relative); it is qualified through the introspector first and kept
// as is when the introspector does not know it.
func (r *TypeMatchRanker) Rank(resolved ResolvedType, required []string) (MatchKind, error) {
	if len(required) == 0 || !resolved.IsResolved() {
		return PlainMatch, nil
	}
	name, err := r.introspector.ResolveType(string(resolved))
	if err != nil {
		return NoMatch, fmt.Errorf("resolve type %s: %w", resolved, err)
	}
	if name == "" {
		name = string(resolved)
	}
	supertypes, err := r.introspector.Supertypes(name)
	if err != nil {
		return NoMatch, fmt.Errorf("supertypes of %s: %w", name, err)
	}
	want := make(map[string]bool, len(required))
	for _, t := range required {
		want[t] = true
	}
	if want[string(resolved)] || want[name] {
		return TypeMatch, nil
	}
	for _, s := range supertypes {
		if want[s] {
			return TypeMatch, nil
		}
	}
	return PlainMatch, nil
}

// Candidate is a completion candidate before ranking.
type Candidate struct {
	Name string
	Unit string
	Type ResolvedType
}

// Proposal is a ranked completion proposal.
type Proposal struct {
	Name      string       `json:"name"`
	Unit      string       `json:"unit"`
	Type      ResolvedType `json:"type,omitempty"`
	Kind      MatchKind    `json:"kind"`
	Relevance int          `json:"relevance"`
}

// Session collects proposals for one completion request. A (name, unit)
// pair is proposed at most once and names must start with the typed prefix.
type Session struct {
	ranker   *TypeMatchRanker
	prefix   string
	required []string
	seen     map[DeclarationKey]bool
	out      []Proposal
}

// NewSession starts a completion session for prefix. A leading quote in
// prefix is ignored.
func NewSession(ranker *TypeMatchRanker, prefix string, required []string) *Session {
	return &Session{
		ranker:   ranker,
		prefix:   strings.ToLower(PrepareMatchString(prefix)),
		required: required,
		seen:     make(map[DeclarationKey]bool),
	}
}

// Offer ranks c and records it. It returns NoMatch when c is filtered out by
// the prefix or was already proposed.
func (s *Session) Offer(c Candidate) (MatchKind, error) {
	if !strings.HasPrefix(strings.ToLower(c.Name), s.prefix) {
		return NoMatch, nil
	}
	key := DeclarationKey{Name: c.Name, Unit: c.Unit}
	if s.seen[key] {
		return NoMatch, nil
	}
	kind, err := s.ranker.Rank(c.Type, s.required)
	if err != nil {
		return NoMatch, err
	}
	s.seen[key] = true
	s.out = append(s.out, Proposal{
		Name:      c.Name,
		Unit:      c.Unit,
		Type:      c.Type,
		Kind:      kind,
		Relevance: kind.Relevance(),
	})
	return kind, nil
}

// Proposals returns the recorded proposals, most relevant first, then by
// name and unit.
func (s *Session) Proposals() []Proposal {
	out := make([]Proposal, len(s.out))
	copy(out, s.out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}
