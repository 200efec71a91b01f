// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Clean removes packaged bundles and generated directories. A clean done
// as part of a build (forBuild) is a no-op since the pipeline overwrites
// its outputs. Missing paths are skipped, so Clean is idempotent; any other
// removal failure is returned as a CleanupError, as is a generated
// directory that does not resolve strictly below the project root.
func (t *BuildTask) Clean(forBuild bool) error {
	if forBuild {
		return nil
	}
	dirs := t.generatedDirs()
	for _, dir := range dirs {
		if err := ValidateGeneratedDir(dir); err != nil {
			return &CleanupError{Path: dir, Err: err}
		}
	}

	for _, f := range t.subject.ListOutputs() {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &CleanupError{Path: f, Err: err}
		}
		t.logger.Debug("removed output", "path", f)
	}

	for _, dir := range dirs {
		path := filepath.Join(t.subject.RootDir(), filepath.FromSlash(dir))
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return &CleanupError{Path: path, Err: err}
		}
		t.logger.Debug("removed directory", "path", path)
	}
	return nil
}

func (t *BuildTask) generatedDirs() []string {
	dirs := append([]string(nil), t.cleanDirs...)
	if t.stager != nil && t.stager.Dir() != "" {
		dirs = append(dirs, t.stager.Dir())
	}
	return dirs
}
