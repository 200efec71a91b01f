// SPDX-License-Identifier: MPL-2.0

package staging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"extbuild/internal/artifact"
)

// DefaultDir is the staging subdirectory created inside the project root.
const DefaultDir = "staged"

type (
	// Stager copies one named upstream artifact into a staging directory.
	Stager struct {
		provider    Provider
		artifact    string
		dir         string
		settleDelay time.Duration
		logger      *slog.Logger
	}

	// Options configures a Stager.
	Options struct {
		// Artifact is the symbolic name looked up in the Provider.
		Artifact string
		// Dir is the staging subdirectory name. Empty means DefaultDir.
		Dir string
		// SettleDelay is waited before the lookup so a concurrently
		// finishing upstream build can flush its output.
		SettleDelay time.Duration
		Logger      *slog.Logger
	}
)

// NewStager creates a Stager.
func NewStager(provider Provider, opts Options) *Stager {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Stager{
		provider:    provider,
		artifact:    opts.Artifact,
		dir:         opts.Dir,
		settleDelay: opts.SettleDelay,
		logger:      opts.Logger,
	}
}

// Dir returns the staging subdirectory name.
func (s *Stager) Dir() string { return s.dir }

// Stage replaces root/Dir() with a fresh copy of the artifact and returns
// the staged file path. When the artifact cannot be found, the existing
// staging directory is left as it is. Dir must resolve strictly below root.
func (s *Stager) Stage(ctx context.Context, root string) (string, error) {
	if err := artifact.ValidateGeneratedDir(s.dir); err != nil {
		return "", fmt.Errorf("refusing to stage into %q: %w", s.dir, err)
	}

	if s.settleDelay > 0 {
		s.logger.Info("waiting for upstream artifact", "artifact", s.artifact, "delay", s.settleDelay)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.settleDelay):
		}
	}

	src, err := s.provider.Lookup(s.artifact)
	if err != nil {
		return "", err
	}

	stageDir := filepath.Join(root, filepath.FromSlash(s.dir))
	if err := os.RemoveAll(stageDir); err != nil {
		return "", fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	dst := filepath.Join(stageDir, filepath.Base(src))
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	s.logger.Info("staged upstream artifact", "artifact", s.artifact, "path", dst)
	return dst, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, closeErr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}
