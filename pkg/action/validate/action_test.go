package validate

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/beanres/internal/validation"
	"github.com/cmmoran/beanres/pkg/project"
	"github.com/cmmoran/beanres/pkg/workspace"
)

const personJava = `package com.acme;

public class Person {
    public void setName(String name) {}
}
`

func open(t *testing.T, unit string) (*workspace.Workspace, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Person.java"), []byte(personJava), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.xml"), []byte(unit), 0o644))
	p := &project.Project{SourceRoots: []string{"src"}, Units: []string{"app.xml"}}
	path := filepath.Join(dir, "beans-project.yaml")
	require.NoError(t, p.Save(path))

	w, err := workspace.Open(context.Background(), path)
	require.NoError(t, err)
	return w, dir
}

func TestRun(t *testing.T) {
	w, _ := open(t, `<beans>
  <bean id="ok" class="com.acme.Person"><property name="name" value="x"/></bean>
  <bean id="bad" class="com.acme.Person"><property name="age" value="3"/></bean>
</beans>`)
	ds, err := Run(w)
	require.NoError(t, err)
	require.Len(t, ds, 1)
	require.Equal(t, validation.RuleProperty, ds[0].Rule)
	require.Equal(t, "bad", ds[0].Bean)
	require.Equal(t, 3, ds[0].Line)
}

func TestClassify(ttt *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  changeKind
	}{
		{name: "unit write", event: fsnotify.Event{Name: "a/app.xml", Op: fsnotify.Write}, want: unitChange},
		{name: "java create", event: fsnotify.Event{Name: "src/A.java", Op: fsnotify.Create}, want: sourceChange},
		{name: "go remove", event: fsnotify.Event{Name: "model/a.go", Op: fsnotify.Remove}, want: sourceChange},
		{name: "chmod", event: fsnotify.Event{Name: "a/app.xml", Op: fsnotify.Chmod}, want: none},
		{name: "other file", event: fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, want: none},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, classify(tt.event))
		})
	}
}

func TestWatch(t *testing.T) {
	w, dir := open(t, `<beans><bean id="ok" class="com.acme.Person"/></beans>`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan []validation.Diagnostic, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, w, 20*time.Millisecond, func(ds []validation.Diagnostic, err error) {
			require.NoError(t, err)
			results <- ds
		})
	}()

	next := func() []validation.Diagnostic {
		select {
		case ds := <-results:
			return ds
		case <-time.After(5 * time.Second):
			t.Fatal("no validation result")
			return nil
		}
	}
	require.Empty(t, next())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.xml"),
		[]byte(`<beans><bean id="ok" class="com.acme.Missing"/></beans>`), 0o644))
	ds := next()
	require.Len(t, ds, 1)
	require.Equal(t, validation.RuleClass, ds[0].Rule)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchWaitsForRunningValidation(t *testing.T) {
	w, dir := open(t, `<beans><bean id="ok" class="com.acme.Person"/></beans>`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var (
		calls   atomic.Int32
		entered = make(chan struct{})
		release = make(chan struct{})
		done    = make(chan error, 1)
	)
	go func() {
		done <- Watch(ctx, w, 20*time.Millisecond, func([]validation.Diagnostic, error) {
			if calls.Add(1) == 2 {
				close(entered)
				<-release
			}
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.xml"),
		[]byte(`<beans><bean id="ok" class="com.acme.Missing"/></beans>`), 0o644))
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("no revalidation")
	}

	cancel()
	select {
	case <-done:
		t.Fatal("Watch returned while a validation was running")
	case <-time.After(100 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-done)

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(2), calls.Load())
}
