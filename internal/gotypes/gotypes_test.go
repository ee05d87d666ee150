package gotypes

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/beanres/pkg/beans"
)

const modelSource = `package model

type Named interface{ Label() string }

type Base struct{ id int64 }

func (b *Base) GetID() int64    { return b.id }
func (b *Base) SetID(id int64) { b.id = id }

type Person struct {
	Base
	name    string
	address *Address
}

func NewPerson() *Person { return &Person{} }

func (p *Person) GetName() string        { return p.name }
func (p *Person) SetName(n string)       { p.name = n }
func (p *Person) Address() *Address      { return p.address }
func (p *Person) SetAddress(a *Address)  { p.address = a }
func (p *Person) Label() string          { return p.name }

type Address struct{ City string }

func (a Address) GetCity() string { return a.City }
`

const person = "example.com/app/model.Person"

func load(t *testing.T) *Index {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n\ngo 1.22\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model", "model.go"), []byte(modelSource), 0o644))

	x, err := Load(context.Background(), filepath.Join(dir, "model"), nil)
	require.NoError(t, err)
	return x
}

func TestFindModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n"), 0o644))
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, path, err := FindModule(sub)
	require.NoError(t, err)
	require.Equal(t, dir, root)
	require.Equal(t, "example.com/app", path)
}

func TestResolveType(ttt *testing.T) {
	x := load(ttt)
	tests := []struct {
		ref  string
		want string
	}{
		{ref: person, want: person},
		{ref: "model.Person", want: person},
		{ref: "Person", want: person},
		{ref: "*model.Address", want: "example.com/app/model.Address"},
		{ref: "string", want: "string"},
		{ref: "Missing", want: ""},
	}
	for _, tt := range tests {
		ttt.Run(tt.ref, func(t *testing.T) {
			got, err := x.ResolveType(tt.ref)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAccessors(ttt *testing.T) {
	x := load(ttt)
	tests := []struct {
		name     string
		property string
		write    bool
		want     string
		wantType string
	}{
		{name: "get prefix", property: "name", want: person + ".GetName()", wantType: "string"},
		{name: "bare getter", property: "address", want: person + ".Address()", wantType: "example.com/app/model.Address"},
		{name: "promoted", property: "ID", want: "example.com/app/model.Base.GetID()", wantType: "int64"},
		{name: "setter", property: "address", write: true, want: person + ".SetAddress(example.com/app/model.Address)", wantType: "example.com/app/model.Address"},
		{name: "missing", property: "spouse"},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			var (
				m   *beans.Member
				err error
			)
			if tt.write {
				m, err = x.FindWritableAccessor(person, tt.property)
			} else {
				m, err = x.FindReadableAccessor(person, tt.property)
			}
			require.NoError(t, err)
			if tt.want == "" {
				require.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			require.Equal(t, tt.want, m.String())

			var typ string
			if tt.write {
				typ, err = x.DeclaredParamType(m, 0)
			} else {
				typ, err = x.DeclaredReturnType(m)
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantType, typ)
		})
	}
}

func TestFindMethod(t *testing.T) {
	x := load(t)
	m, err := x.FindMethod(person, "NewPerson")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.True(t, m.Static)
	ret, err := x.DeclaredReturnType(m)
	require.NoError(t, err)
	require.Equal(t, person, ret)

	m, err = x.FindMethod(person, "Label")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.False(t, m.Static)

	m, err = x.FindMethod(person, "Nope")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestHierarchy(t *testing.T) {
	x := load(t)
	supers, err := x.Supertypes(person)
	require.NoError(t, err)
	want := []string{person, "example.com/app/model.Base", "example.com/app/model.Named"}
	if diff := cmp.Diff(want, supers); diff != "" {
		t.Errorf("Supertypes() mismatch (-want +got):\n%s", diff)
	}

	subs, err := x.Subtypes("example.com/app/model.Named")
	require.NoError(t, err)
	require.Equal(t, []string{person}, subs)

	subs, err = x.Subtypes("example.com/app/model.Base")
	require.NoError(t, err)
	require.Equal(t, []string{person}, subs)
}

func TestProperties(t *testing.T) {
	x := load(t)
	names := func(props []beans.Property) []string {
		var out []string
		for _, p := range props {
			out = append(out, p.Name)
		}
		return out
	}

	read, err := x.ReadableProperties(person, "")
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "address", "label", "name"}, names(read))

	write, err := x.WritableProperties(person, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"address"}, names(write))

	read, err = x.ReadableProperties("example.com/app/model.Named", "")
	require.NoError(t, err)
	require.Equal(t, []string{"label"}, names(read))
}
