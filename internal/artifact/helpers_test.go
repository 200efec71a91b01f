// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"extbuild/internal/testutil"
)

type (
	fakePackageManager struct {
		calls         []string
		toolErr       error
		depsErr       error
		skipToolWrite bool
		packager      *fakePackager
	}

	fakePackager struct {
		calls   *[]string
		path    string
		output  string
		outTime time.Time
		err     error
	}

	fakeStager struct {
		calls *[]string
		dir   string
		err   error
	}
)

func (f *fakePackageManager) InstallTool(_ context.Context, tool, dir string) error {
	f.calls = append(f.calls, "install-tool:"+tool)
	if f.toolErr != nil {
		return f.toolErr
	}
	if f.skipToolWrite {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.packager.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.packager.path, []byte("#!/bin/sh\n"), 0o755)
}

func (f *fakePackageManager) InstallDependencies(_ context.Context, dir string) error {
	f.calls = append(f.calls, "install-deps")
	if f.depsErr != nil {
		return f.depsErr
	}
	return os.MkdirAll(filepath.Join(dir, "node_modules", "left-pad"), 0o755)
}

func (f *fakePackager) Tool() string { return "vsce" }

func (f *fakePackager) Path() string { return f.path }

func (f *fakePackager) Package(_ context.Context, dir string) error {
	*f.calls = append(*f.calls, "package")
	if f.err != nil {
		return f.err
	}
	out := filepath.Join(dir, f.output)
	if err := os.WriteFile(out, []byte("bundle"), 0o644); err != nil {
		return err
	}
	return os.Chtimes(out, f.outTime, f.outTime)
}

func (f *fakeStager) Dir() string { return f.dir }

func (f *fakeStager) Stage(_ context.Context, root string) (string, error) {
	*f.calls = append(*f.calls, "stage")
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(root, f.dir, "prebuilt.jar")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte("jar"), 0o644)
}

// testProject creates a project in a fresh temp dir with the default
// input directories.
func testProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(ProjectOptions{Name: "vscode-extension", RootDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	return p
}

// testToolchain wires fakes whose packaging tool lives in its own temp dir
// so that installing it does not touch the project inputs.
func testToolchain(t *testing.T, outTime time.Time) (*fakePackageManager, *fakePackager) {
	t.Helper()
	pm := &fakePackageManager{}
	pkg := &fakePackager{
		calls:   &pm.calls,
		path:    filepath.Join(t.TempDir(), "node_modules", ".bin", "vsce"),
		output:  "pkg.vsix",
		outTime: outTime,
	}
	pm.packager = pkg
	return pm, pkg
}

func write(t *testing.T, p *Project, rel string, sec int64) string {
	t.Helper()
	path := filepath.Join(p.RootDir(), filepath.FromSlash(rel))
	testutil.MustWriteFileAt(t, path, rel, testutil.Unix(sec))
	return path
}
