// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestNewProject_Defaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p, err := NewProject(ProjectOptions{RootDir: root})
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}

	if p.Name() != filepath.Base(root) {
		t.Errorf("Name() = %q, want %q", p.Name(), filepath.Base(root))
	}
	if p.OutputDir() != root || p.RootDir() != root {
		t.Errorf("OutputDir() = %q, RootDir() = %q, want %q", p.OutputDir(), p.RootDir(), root)
	}
	if p.OutputExt() != DefaultOutputExt {
		t.Errorf("OutputExt() = %q", p.OutputExt())
	}
	if !slices.Equal(p.InputDirs(), DefaultInputDirs) {
		t.Errorf("InputDirs() = %v, want %v", p.InputDirs(), DefaultInputDirs)
	}
}

func TestNewProject_Invalid(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts ProjectOptions
	}{
		{"empty root", ProjectOptions{}},
		{"missing root", ProjectOptions{RootDir: filepath.Join(root, "missing")}},
		{"root is a file", ProjectOptions{RootDir: file}},
		{"absolute input dir", ProjectOptions{RootDir: root, InputDirs: []string{"/etc"}}},
		{"escaping input dir", ProjectOptions{RootDir: root, InputDirs: []string{"../sibling"}}},
		{"blank input dir", ProjectOptions{RootDir: root, InputDirs: []string{" "}}},
		{"extension without dot", ProjectOptions{RootDir: root, OutputExt: "vsix"}},
		{"extension with separator", ProjectOptions{RootDir: root, OutputExt: "./x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewProject(tt.opts); !errors.Is(err, ErrInvalidProject) {
				t.Errorf("NewProject() error = %v, want ErrInvalidProject", err)
			}
		})
	}
}

func TestNewProject_InputDirsAreCopied(t *testing.T) {
	t.Parallel()

	dirs := []string{"src"}
	p, err := NewProject(ProjectOptions{RootDir: t.TempDir(), InputDirs: dirs})
	if err != nil {
		t.Fatal(err)
	}
	dirs[0] = "mutated"
	got := p.InputDirs()
	got[0] = "mutated-too"
	if !slices.Equal(p.InputDirs(), []string{"src"}) {
		t.Errorf("InputDirs() = %v, project must be immutable", p.InputDirs())
	}
}

func TestListOutputs_RecursiveBySuffix(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	want := []string{
		write(t, p, "pkg.vsix", 10),
		write(t, p, "dist/nested/old.vsix", 10),
	}
	write(t, p, "src/extension.ts", 10)
	write(t, p, "notes.vsix.txt", 10)

	got := p.ListOutputs()
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("ListOutputs() = %v, want %v", got, want)
	}
}

func TestListOutputs_CustomExtension(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	p, err := NewProject(ProjectOptions{RootDir: root, OutputExt: ".zip"})
	if err != nil {
		t.Fatal(err)
	}
	write(t, p, "bundle.vsix", 10)
	zip := write(t, p, "bundle.zip", 10)

	if got := p.ListOutputs(); !slices.Equal(got, []string{zip}) {
		t.Errorf("ListOutputs() = %v, want [%s]", got, zip)
	}
}

func TestListOutputs_RootRemovedYieldsEmpty(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	if err := os.RemoveAll(p.RootDir()); err != nil {
		t.Fatal(err)
	}
	if got := p.ListOutputs(); len(got) != 0 {
		t.Errorf("ListOutputs() = %v, want empty", got)
	}
}

func TestListOutputs_UnreadableSubdirSkipped(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping: permissions are not enforced for root")
	}
	t.Parallel()

	p := testProject(t)
	top := write(t, p, "pkg.vsix", 10)
	write(t, p, "locked/inner.vsix", 10)
	locked := filepath.Join(p.RootDir(), "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	if got := p.ListOutputs(); !slices.Equal(got, []string{top}) {
		t.Errorf("ListOutputs() = %v, want [%s]", got, top)
	}
}

func TestNewBuildTask_Description(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	task := p.NewBuildTask(TaskConfig{})
	if task.Subject() != p {
		t.Error("Subject() does not return the owning project")
	}
	if got := task.String(); got != "Building vscode-extension" {
		t.Errorf("String() = %q", got)
	}
}
