package beans_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/beanres/pkg/beans"
	"github.com/cmmoran/beanres/pkg/beans/beanstest"
)

func chain() *beanstest.Introspector {
	f := beanstest.NewIntrospector()
	for _, n := range []string{"A", "B", "C", "D"} {
		f.AddType(n)
	}
	return f
}

func TestCollectReachableTypes(ttt *testing.T) {
	tests := []struct {
		name  string
		units []*beans.Unit
		sets  []beans.ConfigSet
		unit  string
		bean  string
		want  []string
	}{
		{
			name: "single declaration",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A"},
			)},
			unit: "u", bean: "a",
			want: []string{"A"},
		},
		{
			name: "every ancestor contributes its class",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A", ParentID: "b"},
				&beans.Declaration{ID: "b", ParentID: "c"},
				&beans.Declaration{ID: "c", ClassName: "C"},
			)},
			unit: "u", bean: "a",
			want: []string{"A", "C"},
		},
		{
			name: "duplicate classes collapse",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A", ParentID: "b"},
				&beans.Declaration{ID: "b", ClassName: "A"},
			)},
			unit: "u", bean: "a",
			want: []string{"A"},
		},
		{
			name: "self reference",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A", ParentID: "a"},
			)},
			unit: "u", bean: "a",
			want: []string{"A"},
		},
		{
			name: "mutual cycle",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A", ParentID: "b"},
				&beans.Declaration{ID: "b", ClassName: "B", ParentID: "c"},
				&beans.Declaration{ID: "c", ClassName: "C", ParentID: "a"},
			)},
			unit: "u", bean: "a",
			want: []string{"A", "B", "C"},
		},
		{
			name: "cycle not through start",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A", ParentID: "b"},
				&beans.Declaration{ID: "b", ClassName: "B", ParentID: "c"},
				&beans.Declaration{ID: "c", ClassName: "C", ParentID: "b"},
			)},
			unit: "u", bean: "a",
			want: []string{"A", "B", "C"},
		},
		{
			name: "missing parent stops the walk",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "A", ParentID: "ghost"},
			)},
			unit: "u", bean: "a",
			want: []string{"A"},
		},
		{
			name: "unknown class is skipped",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "Nope", ParentID: "b"},
				&beans.Declaration{ID: "b", ClassName: "B"},
			)},
			unit: "u", bean: "a",
			want: []string{"B"},
		},
		{
			name: "parent found through config set",
			units: []*beans.Unit{
				unit("u", &beans.Declaration{ID: "a", ClassName: "A", ParentID: "b"}),
				unit("v", &beans.Declaration{ID: "b", ClassName: "B", ParentID: "c"}),
				unit("w", &beans.Declaration{ID: "c", ClassName: "C"}),
			},
			sets: []beans.ConfigSet{
				{Name: "uv", Units: []string{"u", "v"}},
				{Name: "vw", Units: []string{"v", "w"}},
			},
			unit: "u", bean: "a",
			want: []string{"A", "B", "C"},
		},
		{
			name: "cycle across units",
			units: []*beans.Unit{
				unit("u", &beans.Declaration{ID: "a", ClassName: "A", ParentID: "b"}),
				unit("v", &beans.Declaration{ID: "b", ClassName: "B", ParentID: "a"}),
			},
			sets: []beans.ConfigSet{{Name: "uv", Units: []string{"u", "v"}}},
			unit: "u", bean: "a",
			want: []string{"A", "B"},
		},
		{
			name: "factory product replaces factory class",
			units: []*beans.Unit{unit("u",
				&beans.Declaration{ID: "a", ClassName: "com.acme.Factory", FactoryMethodName: "create", ParentID: "b"},
				&beans.Declaration{ID: "b", ClassName: "com.acme.Address"},
			)},
			unit: "u", bean: "a",
			want: []string{"com.acme.Person", "com.acme.Address"},
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			m := model(tt.units...)
			for _, s := range tt.sets {
				m.AddConfigSet(s)
			}
			intro := chain()
			intro.AddType("com.acme.Person")
			intro.AddType("com.acme.Address")
			intro.AddType("com.acme.Factory").StaticMethod("create", "com.acme.Person")

			decl, err := m.FindDeclaration(tt.unit, tt.bean)
			require.NoError(t, err)

			got, err := beans.NewEngine(m, intro).CollectReachableTypes(decl)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CollectReachableTypes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGraphWalkerAnonymousStart(t *testing.T) {
	m := model(unit("u",
		&beans.Declaration{ID: "b", ClassName: "B", ParentID: "b"},
	))
	w := beans.NewGraphWalker(m, chain(), nil)

	got, err := w.CollectTypes("", "A", "b", "u")
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, got)

	got, err = w.CollectTypes("", "", "", "u")
	require.NoError(t, err)
	require.Empty(t, got)
}

type faultyRegistry struct {
	beans.Registry
	err error
}

func (r faultyRegistry) FindDeclaration(string, string) (*beans.Declaration, error) {
	return nil, r.err
}

func TestGraphWalkerRegistryFault(t *testing.T) {
	boom := errors.New("registry offline")
	w := beans.NewGraphWalker(faultyRegistry{err: boom}, chain(), nil)

	got, err := w.CollectTypes("a", "A", "b", "u")
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"A"}, got)
}
