package beans_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/beanres/pkg/beans"
)

func ids(decls []*beans.Declaration) []string {
	var out []string
	for _, d := range decls {
		out = append(out, d.Unit+":"+d.Handle())
	}
	return out
}

func TestModelFindDeclaration(t *testing.T) {
	first := &beans.Declaration{ID: "a", ClassName: "First"}
	m := model(unit("u", first, &beans.Declaration{ID: "a", ClassName: "Second"}))

	got, err := m.FindDeclaration("u", "a")
	require.NoError(t, err)
	require.Same(t, first, got)
	require.Equal(t, "u", got.Unit)

	got, err = m.FindDeclaration("u", "missing")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = m.FindDeclaration("nowhere", "a")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = m.Unit("nowhere")
	require.ErrorIs(t, err, beans.ErrUnknownUnit)
}

func TestModelReachableViaConfigSets(ttt *testing.T) {
	tests := []struct {
		name  string
		units []*beans.Unit
		sets  []beans.ConfigSet
		unit  string
		want  []string
	}{
		{
			name:  "no sets",
			units: []*beans.Unit{unit("a", &beans.Declaration{ID: "x"}), unit("b", &beans.Declaration{ID: "y"})},
			unit:  "a",
		},
		{
			name:  "shared set excludes own unit",
			units: []*beans.Unit{unit("a", &beans.Declaration{ID: "x"}), unit("b", &beans.Declaration{ID: "y"})},
			sets:  []beans.ConfigSet{{Name: "s", Units: []string{"a", "b"}}},
			unit:  "a",
			want:  []string{"b:y"},
		},
		{
			name: "unit in several sets",
			units: []*beans.Unit{
				unit("a", &beans.Declaration{ID: "x"}),
				unit("b", &beans.Declaration{ID: "y"}),
				unit("c", &beans.Declaration{ID: "z"}),
			},
			sets: []beans.ConfigSet{
				{Name: "ab", Units: []string{"a", "b"}},
				{Name: "ac", Units: []string{"c", "a", "b"}},
			},
			unit: "a",
			want: []string{"b:y", "c:z"},
		},
		{
			name: "imports are transitive and cycle safe",
			units: []*beans.Unit{
				{Name: "a", Imports: []string{"b"}, Declarations: beans.Declarations{{ID: "x"}}},
				{Name: "b", Imports: []string{"c", "a"}, Declarations: beans.Declarations{{ID: "y"}}},
				{Name: "c", Imports: []string{"b"}, Declarations: beans.Declarations{{ID: "z"}}},
			},
			unit: "a",
			want: []string{"b:y", "c:z"},
		},
		{
			name: "imports of set members",
			units: []*beans.Unit{
				unit("a", &beans.Declaration{ID: "x"}),
				{Name: "b", Imports: []string{"lib"}, Declarations: beans.Declarations{{ID: "y"}}},
				unit("lib", &beans.Declaration{ID: "l"}),
			},
			sets: []beans.ConfigSet{{Name: "s", Units: []string{"a", "b"}}},
			unit: "a",
			want: []string{"b:y", "lib:l"},
		},
		{
			name:  "set member not loaded",
			units: []*beans.Unit{unit("a", &beans.Declaration{ID: "x"})},
			sets:  []beans.ConfigSet{{Name: "s", Units: []string{"a", "ghost"}}},
			unit:  "a",
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			m := model(tt.units...)
			for _, s := range tt.sets {
				m.AddConfigSet(s)
			}
			got, err := m.ReachableViaConfigSets(tt.unit)
			require.NoError(t, err)
			require.Equal(t, tt.want, ids(got))
		})
	}
}

func TestModelMutation(t *testing.T) {
	m := model(unit("a"), unit("b"))
	m.AddConfigSet(beans.ConfigSet{Name: "s", Units: []string{"a"}})
	m.AddConfigSet(beans.ConfigSet{Name: "s", Units: []string{"a", "b"}})
	require.Len(t, m.ConfigSets(), 1)
	require.Equal(t, []string{"s"}, m.ConfigSetsOf("b"))

	m.AddUnit(unit("a", &beans.Declaration{ID: "n"}))
	require.Len(t, m.Units(), 2)
	u, err := m.Unit("a")
	require.NoError(t, err)
	require.Len(t, u.Declarations, 1)

	m.RemoveUnit("a")
	require.Len(t, m.Units(), 1)
	require.Equal(t, "b", m.Units()[0].Name)
}

func TestModelDeclarationsCopy(t *testing.T) {
	owned := &beans.Declaration{ID: "a"}
	u := &beans.Unit{Name: "u", Declarations: make(beans.Declarations, 1, 4)}
	u.Declarations[0] = owned
	m := model(u)
	require.Equal(t, "u", owned.Unit)

	got, err := m.Declarations("u")
	require.NoError(t, err)
	got[0] = &beans.Declaration{ID: "replaced"}
	got = append(got, &beans.Declaration{ID: "extra"})
	require.Len(t, got, 2)

	again, err := m.Declarations("u")
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Same(t, owned, again[0])
	require.Nil(t, u.Declarations[:cap(u.Declarations)][1])
}

func TestDeclarationHandle(t *testing.T) {
	d := &beans.Declaration{Unit: "app.xml", Line: 12, Column: 5}
	require.Equal(t, "app.xml@12:5", d.Handle())
	require.Equal(t, beans.DeclarationKey{Name: "app.xml@12:5", Unit: "app.xml"}, d.Key())

	d.ID = "named"
	require.Equal(t, "named", d.Handle())

	var nilDecl *beans.Declaration
	require.Equal(t, "", nilDecl.Handle())
}
