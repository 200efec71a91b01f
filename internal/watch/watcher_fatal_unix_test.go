// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// A rebuild session ends when inotify runs out of watches or descriptors;
// any other backend error is logged and the next source edit still triggers
// a rebuild.
func TestRunStopsRebuildsOnlyOnResourceExhaustion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantFatal bool
	}{
		{name: "max_user_watches reached", err: syscall.ENOSPC, wantFatal: true},
		{name: "process descriptor limit", err: syscall.EMFILE, wantFatal: true},
		{name: "system descriptor limit", err: syscall.ENFILE, wantFatal: true},
		{name: "wrapped watch limit", err: fmt.Errorf("inotify_add_watch src: %w", syscall.ENOSPC), wantFatal: true},
		{name: "unreadable node_modules entry", err: syscall.EACCES, wantFatal: false},
		{name: "permission on staged dir", err: syscall.EPERM, wantFatal: false},
		{name: "queue overflow", err: errors.New("fsnotify: queue or buffer overflow"), wantFatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isFatalFsnotifyError(tt.err); got != tt.wantFatal {
				t.Fatalf("isFatalFsnotifyError(%v) = %v, want %v", tt.err, got, tt.wantFatal)
			}

			dir := t.TempDir()
			rebuilds := make(chan []string, 4)
			w, err := New(Options{
				Root:     dir,
				Debounce: 50 * time.Millisecond,
				Ignore:   []string{"**/*.vsix"},
				OnChange: func(_ context.Context, changed []string) error {
					rebuilds <- changed
					return nil
				},
				Logger: discardLogger(),
			})
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			w.fsw.Errors <- tt.err

			if tt.wantFatal {
				select {
				case runErr := <-done:
					if !errors.Is(runErr, tt.err) {
						t.Errorf("Run() = %v, want it to wrap %v", runErr, tt.err)
					}
				case <-time.After(5 * time.Second):
					t.Fatal("Run kept going after a fatal watcher error")
				}
				return
			}

			writeFile(t, filepath.Join(dir, "extension.ts"))
			select {
			case <-rebuilds:
			case runErr := <-done:
				t.Fatalf("Run() returned %v after a recoverable error", runErr)
			case <-time.After(5 * time.Second):
				t.Fatal("no rebuild after a recoverable watcher error")
			}

			cancel()
			if runErr := <-done; runErr != nil {
				t.Errorf("Run() after cancel = %v, want nil", runErr)
			}
		})
	}
}
