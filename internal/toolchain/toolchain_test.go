// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"extbuild/internal/runtime"
)

type fakeExecutor struct {
	calls  []runtime.Command
	result *runtime.Result
}

func (f *fakeExecutor) Run(_ context.Context, cmd runtime.Command) *runtime.Result {
	f.calls = append(f.calls, cmd)
	if f.result != nil {
		return f.result
	}
	return runtime.NewExitCodeResult(0)
}

func TestNPM_Commands(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{}
	npm := NewNPM(exec, "", map[string]string{"CI": "1"})

	if err := npm.InstallTool(context.Background(), "vsce", "/suite"); err != nil {
		t.Fatalf("InstallTool() error = %v", err)
	}
	if err := npm.InstallDependencies(context.Background(), "/suite/ext"); err != nil {
		t.Fatalf("InstallDependencies() error = %v", err)
	}

	if len(exec.calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(exec.calls))
	}
	tool, deps := exec.calls[0], exec.calls[1]
	if tool.Name != "npm" || !slices.Equal(tool.Args, []string{"install", "vsce"}) || tool.Dir != "/suite" {
		t.Errorf("InstallTool ran %+v", tool)
	}
	if deps.Name != "npm" || !slices.Equal(deps.Args, []string{"install"}) || deps.Dir != "/suite/ext" {
		t.Errorf("InstallDependencies ran %+v", deps)
	}
	if tool.Env["CI"] != "1" {
		t.Errorf("env not forwarded: %v", tool.Env)
	}
}

func TestNPM_Failure(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{result: runtime.NewExitCodeResult(1)}
	err := NewNPM(exec, "pnpm", nil).InstallDependencies(context.Background(), "/ext")
	if err == nil {
		t.Fatal("InstallDependencies() error = nil, want failure")
	}
	if exec.calls[0].Name != "pnpm" {
		t.Errorf("binary = %q, want pnpm", exec.calls[0].Name)
	}
}

func TestPackager(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{}
	p := NewPackager(exec, PackagerOptions{ToolDir: "/suite", Args: []string{"--no-yarn"}})

	if p.Tool() != DefaultPackager {
		t.Errorf("Tool() = %q, want %q", p.Tool(), DefaultPackager)
	}
	wantPath := filepath.Join("/suite", "node_modules", ".bin", "vsce")
	if p.Path() != wantPath {
		t.Errorf("Path() = %q, want %q", p.Path(), wantPath)
	}

	if err := p.Package(context.Background(), "/suite/ext"); err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	call := exec.calls[0]
	if call.Name != wantPath || call.Dir != "/suite/ext" || !slices.Equal(call.Args, []string{"package", "--no-yarn"}) {
		t.Errorf("Package ran %+v", call)
	}
}

func TestPackager_NonZeroExit(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{result: runtime.NewExitCodeResult(2)}
	err := NewPackager(exec, PackagerOptions{ToolDir: "/suite"}).Package(context.Background(), "/suite/ext")

	var exitErr *PackagingExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("Package() error = %v, want *PackagingExitError with code 2", err)
	}
}
