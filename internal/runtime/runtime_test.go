// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"
)

func requirePOSIXShell(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping process test in short mode")
	}
	if goruntime.GOOS == "windows" {
		t.Skip("skipping: POSIX shell required")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("skipping: sh not found in PATH")
	}
}

func executors(streams IO) map[Mode]Executor {
	return map[Mode]Executor{
		ModeNative:  NewNativeExecutor(streams),
		ModeVirtual: NewVirtualExecutor(streams),
	}
}

func TestExecutors_ExitCodes(t *testing.T) {
	requirePOSIXShell(t)

	for mode, ex := range executors(IO{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}) {
		t.Run(string(mode), func(t *testing.T) {
			ok := ex.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 0"}})
			if !ok.Success() {
				t.Errorf("exit 0: result = %+v, want success", ok)
			}

			failed := ex.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
			if failed.Error != nil {
				t.Fatalf("exit 3: unexpected infrastructure error %v", failed.Error)
			}
			if failed.ExitCode != 3 {
				t.Errorf("exit 3: ExitCode = %d, want 3", failed.ExitCode)
			}
			if failed.Err() == nil {
				t.Error("exit 3: Err() = nil, want error")
			}
		})
	}
}

func TestExecutors_DirEnvAndOutput(t *testing.T) {
	requirePOSIXShell(t)

	dir := t.TempDir()
	for mode := range executors(IO{}) {
		t.Run(string(mode), func(t *testing.T) {
			var stdout bytes.Buffer
			ex := executors(IO{Stdout: &stdout, Stderr: &bytes.Buffer{}})[mode]

			res := ex.Run(context.Background(), Command{
				Name: "sh",
				Args: []string{"-c", `printf '%s|%s' "$(pwd -P)" "$EXTBUILD_TEST_VALUE"`},
				Dir:  dir,
				Env:  map[string]string{"EXTBUILD_TEST_VALUE": "it's quoted"},
			})
			if !res.Success() {
				t.Fatalf("Run() = %+v, want success", res)
			}

			wantDir, err := filepath.EvalSymlinks(dir)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := stdout.String(), wantDir+"|it's quoted"; got != want {
				t.Errorf("output = %q, want %q", got, want)
			}
		})
	}
}

func TestExecutors_MissingProgram(t *testing.T) {
	requirePOSIXShell(t)

	for mode, ex := range executors(IO{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}) {
		t.Run(string(mode), func(t *testing.T) {
			res := ex.Run(context.Background(), Command{Name: "extbuild-no-such-program"})
			if res.Success() {
				t.Fatal("missing program reported success")
			}
			if res.Err() == nil {
				t.Error("Err() = nil, want error")
			}
		})
	}
}

func TestExecutors_EmptyName(t *testing.T) {
	t.Parallel()

	for mode, ex := range executors(IO{}) {
		if res := ex.Run(context.Background(), Command{}); res.Error == nil {
			t.Errorf("%s: empty command should fail with an error", mode)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(ModeNative, IO{}); err != nil {
		t.Errorf("New(native) error = %v", err)
	}
	if e, err := New(ModeVirtual, IO{}); err != nil {
		t.Errorf("New(virtual) error = %v", err)
	} else if _, ok := e.(*VirtualExecutor); !ok {
		t.Errorf("New(virtual) = %T, want *VirtualExecutor", e)
	}

	_, err := New("container", IO{})
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("New(container) error = %v, want ErrInvalidMode", err)
	}
	if !strings.Contains(err.Error(), `"container"`) {
		t.Errorf("error message should name the mode: %v", err)
	}
}

func TestExitCode_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code    ExitCode
		wantErr bool
	}{
		{0, false},
		{255, false},
		{-1, true},
		{256, true},
	}
	for _, tt := range tests {
		err := tt.code.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("ExitCode(%d).Validate() = %v, wantErr %v", tt.code, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidExitCode) {
			t.Errorf("ExitCode(%d).Validate() should wrap ErrInvalidExitCode", tt.code)
		}
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	c := Command{Name: "npm", Args: []string{"install", "vsce"}}
	if got := c.String(); got != "npm install vsce" {
		t.Errorf("String() = %q", got)
	}
}

func TestExecutors_CanceledContext(t *testing.T) {
	requirePOSIXShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for mode, ex := range executors(IO{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}) {
		t.Run(string(mode), func(t *testing.T) {
			res := ex.Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
			if res.Success() {
				t.Fatalf("result = %+v, want failure for a canceled context", res)
			}
		})
	}
}
