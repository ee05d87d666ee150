package index

import (
	"context"
	"log/slog"

	"github.com/cmmoran/beanres/pkg/project"
	"github.com/cmmoran/beanres/pkg/workspace"
)

// Result summarizes an index run.
type Result struct {
	Cache  string `json:"cache,omitempty"`
	Files  int    `json:"files"`
	Types  int    `json:"types"`
	Cached bool   `json:"cached"`
}

// Generate builds the Java type index for the project at projectPath and
// stores it in cache. An up-to-date cache is reused unless force is set.
func Generate(ctx context.Context, projectPath, cache string, force bool) (Result, error) {
	p, err := project.Load(projectPath)
	if err != nil {
		return Result{}, err
	}
	x, cached, err := workspace.BuildJavaIndex(ctx, workspace.SourceRoots(p), cache, force, slog.Default())
	if err != nil {
		return Result{}, err
	}
	return Result{
		Cache:  cache,
		Files:  len(x.Sources()),
		Types:  len(x.Types(false)),
		Cached: cached,
	}, nil
}
