// SPDX-License-Identifier: MPL-2.0

package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrArtifactNotFound is returned when no prebuilt file exists for a name.
var ErrArtifactNotFound = errors.New("upstream artifact not found")

type (
	// Provider resolves a symbolic artifact name to a file path.
	Provider interface {
		Lookup(name string) (string, error)
	}

	// GlobProvider resolves names through doublestar patterns.
	GlobProvider struct {
		baseDir  string
		patterns map[string]string
	}
)

// NewGlobProvider creates a GlobProvider. Patterns are slash-separated and
// relative to baseDir; invalid patterns are rejected here.
func NewGlobProvider(baseDir string, patterns map[string]string) (*GlobProvider, error) {
	for name, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("artifact %q: invalid pattern %q", name, pattern)
		}
	}
	return &GlobProvider{baseDir: baseDir, patterns: patterns}, nil
}

// Lookup returns the newest regular file matching the pattern registered
// for name. Unknown names and patterns without matches both yield an error
// wrapping ErrArtifactNotFound.
func (p *GlobProvider) Lookup(name string) (string, error) {
	pattern, ok := p.patterns[name]
	if !ok {
		return "", fmt.Errorf("%w: %s is not declared", ErrArtifactNotFound, name)
	}

	matches, err := doublestar.Glob(os.DirFS(p.baseDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}

	var (
		best     string
		bestTime int64
	)
	for _, m := range matches {
		full := filepath.Join(p.baseDir, filepath.FromSlash(m))
		info, statErr := os.Stat(full)
		if statErr != nil || !info.Mode().IsRegular() {
			continue
		}
		if mt := info.ModTime().UnixNano(); best == "" || mt > bestTime {
			best, bestTime = full, mt
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s (pattern %q under %s)", ErrArtifactNotFound, name, pattern, p.baseDir)
	}
	return best, nil
}

// IsNotFound reports whether err means the artifact does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrArtifactNotFound) || errors.Is(err, fs.ErrNotExist)
}
