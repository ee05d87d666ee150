package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/beanres/pkg/project"
)

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "com", "acme")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "Person.java"),
		[]byte("package com.acme;\npublic class Person { public static class Builder {} }\n"), 0o644))
	path := filepath.Join(dir, "beans-project.yaml")
	require.NoError(t, (&project.Project{SourceRoots: []string{"src"}}).Save(path))
	cache := filepath.Join(dir, ".beanres", "index.db")

	res, err := Generate(ctx, path, cache, false)
	require.NoError(t, err)
	require.Equal(t, Result{Cache: cache, Files: 1, Types: 2}, res)

	res, err = Generate(ctx, path, cache, false)
	require.NoError(t, err)
	require.True(t, res.Cached)

	res, err = Generate(ctx, path, cache, true)
	require.NoError(t, err)
	require.False(t, res.Cached)
}
