package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const shop = "testdata/shop/beans-project.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--level", "error", "--index-cache", ""}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestResolveCommand(ttt *testing.T) {
	tests := []struct {
		bean string
		want string
	}{
		{bean: "person", want: "com.acme.Person"},
		{bean: "child", want: "com.acme.Person"},
		{bean: "made", want: "com.acme.Address"},
	}
	for _, tt := range tests {
		ttt.Run(tt.bean, func(t *testing.T) {
			out, err := run(t, "-p", shop, "resolve", "config/app.xml", tt.bean)
			require.NoError(t, err)
			got := decode[resolveResult](t, out)
			require.Equal(t, tt.want, string(got.EffectiveType))
			require.Contains(t, got.ReachableTypes, tt.want)
		})
	}

	_, err := run(ttt, "-p", shop, "resolve", "config/app.xml", "ghost")
	require.ErrorContains(ttt, err, `bean "ghost" not found`)
}

func TestPathCommand(t *testing.T) {
	out, err := run(t, "-p", shop, "path", "config/app.xml", "person", "address.city")
	require.NoError(t, err)
	got := decode[pathResult](t, out)
	require.NotNil(t, got.Setter)
	require.Equal(t, "com.acme.Address.setCity(String)", got.Setter.String())
	require.Len(t, got.Getters, 2)
	require.Equal(t, "com.acme.Person.getAddress()", got.Getters[0].Accessor.String())
	require.Equal(t, "com.acme.Address.getCity()", got.Getters[1].Accessor.String())
}

func TestCompleteCommand(t *testing.T) {
	type proposal struct {
		Name string `json:"name"`
		Unit string `json:"unit"`
		Kind string `json:"kind"`
	}
	out, err := run(t, "-p", shop, "complete", "config/app.xml", "p", "--bean", "service", "--property", "dataSource")
	require.NoError(t, err)
	want := []proposal{
		{Name: "pool", Unit: "config/infra.xml", Kind: "TYPE_MATCH"},
		{Name: "person", Unit: "config/app.xml", Kind: "PLAIN_MATCH"},
	}
	if diff := cmp.Diff(want, decode[[]proposal](t, out)); diff != "" {
		t.Errorf("complete mismatch (-want +got):\n%s", diff)
	}

	type property struct {
		Path string `json:"path"`
	}
	out, err = run(t, "-p", shop, "complete", "config/app.xml", "address.c", "--properties-of", "person")
	require.NoError(t, err)
	require.Equal(t, []property{{Path: "address.city"}}, decode[[]property](t, out))
}

func TestNamingCommand(t *testing.T) {
	out, err := run(t, "naming", "transaction-manager", "Name")
	require.NoError(t, err)
	want := []namingResult{
		{Input: "transaction-manager", Property: "transactionManager", Attribute: "transaction-manager", Valid: true},
		{Input: "Name", Property: "Name", Attribute: "-name", Valid: false},
	}
	if diff := cmp.Diff(want, decode[[]namingResult](t, out)); diff != "" {
		t.Errorf("naming mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "-p", shop, "validate", "--json")
	require.NoError(t, err)
	require.JSONEq(t, "[]", out)

	dir := t.TempDir()
	write := func(rel, src string) {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	write("beans-project.yaml", "name: broken\nbackend: java\nsource_roots: [src]\nunits: [app.xml]\n")
	write("src/Thing.java", "package com.acme;\npublic class Thing { public void setSize(int size) {} }\n")
	write("app.xml", `<beans>
  <bean id="thing" class="com.acme.Thing">
    <property name="colour" value="red"/>
  </bean>
</beans>
`)
	out, err = run(t, "-p", filepath.Join(dir, "beans-project.yaml"), "validate", "--json")
	require.ErrorIs(t, err, errInvalid)
	type diagnostic struct {
		Unit    string `json:"unit"`
		Bean    string `json:"bean"`
		Rule    string `json:"rule"`
		Message string `json:"message"`
	}
	want := []diagnostic{{Unit: "app.xml", Bean: "thing", Rule: "property", Message: `no writable property "colour" on com.acme.Thing`}}
	if diff := cmp.Diff(want, decode[[]diagnostic](t, out)); diff != "" {
		t.Errorf("validate mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexCommand(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "index.db")
	out, err := run(t, "-p", shop, "index", "--index-cache", cache)
	require.NoError(t, err)
	got := decode[map[string]any](t, out)
	require.EqualValues(t, 5, got["files"])
	require.FileExists(t, cache)
}
