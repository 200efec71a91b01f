// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"testing"

	"extbuild/internal/testutil"
)

func TestNeedsBuild_Monotonicity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  int64
		output int64
		want   bool
	}{
		{"input newer", 100, 50, true},
		{"input one second newer", 51, 50, true},
		{"equal timestamps", 50, 50, false},
		{"input older", 10, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := testProject(t)
			write(t, p, "src/a.txt", tt.input)
			write(t, p, "dist/pkg.vsix", tt.output)

			got, reason := p.NewBuildTask(TaskConfig{}).NeedsBuild()
			if got != tt.want {
				t.Errorf("NeedsBuild() = %v (%q), want %v", got, reason, tt.want)
			}
			if got && reason == "" {
				t.Error("NeedsBuild() = true with empty reason")
			}
		})
	}
}

func TestNeedsBuild_EmptyOutputsForceBuild(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	write(t, p, "src/a.txt", 10)

	got, reason := p.NewBuildTask(TaskConfig{}).NeedsBuild()
	if !got || reason != "no packaged output" {
		t.Errorf("NeedsBuild() = %v, %q; want true, \"no packaged output\"", got, reason)
	}
}

func TestNeedsBuild_NoInputWithOutput(t *testing.T) {
	t.Parallel()

	p, err := NewProject(ProjectOptions{RootDir: t.TempDir(), InputDirs: []string{"src"}})
	if err != nil {
		t.Fatal(err)
	}
	// The only regular file is nested below the scanned level.
	write(t, p, "dist/pkg.vsix", 50)

	task := p.NewBuildTask(TaskConfig{})
	if ts := task.NewestInput(); !ts.IsNoInput() {
		t.Fatalf("NewestInput() = %v, want NoInput", ts)
	}
	if got, _ := task.NeedsBuild(); got {
		t.Error("NeedsBuild() = true, NoInput must not force a rebuild when an output exists")
	}
}

func TestNeedsBuild_Force(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	write(t, p, "src/a.txt", 10)
	write(t, p, "pkg.vsix", 50)

	got, reason := p.NewBuildTask(TaskConfig{Args: BuildArgs{Force: true}}).NeedsBuild()
	if !got || reason != "forced" {
		t.Errorf("NeedsBuild() = %v, %q; want true, \"forced\"", got, reason)
	}
}

func TestNeedsBuild_NewestOutputWins(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	write(t, p, "src/a.txt", 100)
	write(t, p, "old/pkg.vsix", 50)
	write(t, p, "new/pkg.vsix", 150)

	task := p.NewBuildTask(TaskConfig{})
	if got := task.NewestOutput().Time(); !got.Equal(testutil.Unix(150)) {
		t.Errorf("NewestOutput() = %v, want 150", got)
	}
	if got, _ := task.NeedsBuild(); got {
		t.Error("NeedsBuild() = true, newest output is newer than every input")
	}
}

func TestNewestInput_ShallowScan(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	write(t, p, "src/a.txt", 100)
	write(t, p, "src/deep/nested/b.txt", 900)
	write(t, p, "node_modules/pkg/index.js", 800)

	task := p.NewBuildTask(TaskConfig{})
	if got := task.NewestInput().Time(); !got.Equal(testutil.Unix(100)) {
		t.Errorf("NewestInput() = %v, want 100 (nested files must be ignored)", got)
	}

	write(t, p, "src/c.txt", 300)
	if got := task.NewestInput().Time(); !got.Equal(testutil.Unix(300)) {
		t.Errorf("NewestInput() = %v, want 300 after adding a direct child", got)
	}
}

func TestNewestInput_RootAndEveryInputDir(t *testing.T) {
	t.Parallel()

	for _, dir := range append([]string{""}, DefaultInputDirs...) {
		t.Run("dir="+dir, func(t *testing.T) {
			t.Parallel()
			p := testProject(t)
			write(t, p, "src/base.txt", 10)
			rel := "file.txt"
			if dir != "" {
				rel = dir + "/file.txt"
			}
			write(t, p, rel, 500)

			if got := p.NewBuildTask(TaskConfig{}).NewestInput().Time(); !got.Equal(testutil.Unix(500)) {
				t.Errorf("NewestInput() = %v, want 500 from %s", got, rel)
			}
		})
	}
}

func TestNewestInput_UnlistedDirIgnored(t *testing.T) {
	t.Parallel()

	p, err := NewProject(ProjectOptions{RootDir: t.TempDir(), InputDirs: []string{"src"}})
	if err != nil {
		t.Fatal(err)
	}
	write(t, p, "src/a.txt", 100)
	write(t, p, "lib/b.txt", 900)

	if got := p.NewBuildTask(TaskConfig{}).NewestInput().Time(); !got.Equal(testutil.Unix(100)) {
		t.Errorf("NewestInput() = %v, want 100 (lib is not configured)", got)
	}
}

func TestNewestInput_RecomputedEachCall(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	path := write(t, p, "src/a.txt", 100)
	write(t, p, "pkg.vsix", 200)

	task := p.NewBuildTask(TaskConfig{})
	if got, _ := task.NeedsBuild(); got {
		t.Fatal("NeedsBuild() = true before the input changed")
	}
	testutil.MustTouch(t, path, testutil.Unix(300))
	if got, _ := task.NeedsBuild(); !got {
		t.Error("NeedsBuild() = false after the input changed; results must not be cached")
	}
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	a, b := TimestampOf(testutil.Unix(1)), TimestampOf(testutil.Unix(2))
	if !b.IsNewerThan(a) || a.IsNewerThan(b) || a.IsNewerThan(a) {
		t.Error("IsNewerThan must be a strict ordering")
	}
	if !NoInput.IsNoInput() || a.IsNoInput() {
		t.Error("IsNoInput() mismatch")
	}
	if NoInput.String() != "<none>" {
		t.Errorf("NoInput.String() = %q", NoInput.String())
	}
}
