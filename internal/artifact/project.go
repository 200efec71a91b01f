// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultOutputExt is the suffix of packaged extension bundles.
const DefaultOutputExt = ".vsix"

// DefaultInputDirs are the subdirectories scanned for staleness when none
// are configured.
var DefaultInputDirs = []string{"lib", "media", "snippets", "src"}

type (
	// Project is a directory packaged into a single bundle file. It is
	// immutable after NewProject returns.
	Project struct {
		name      string
		rootDir   string
		inputDirs []string
		outputExt string
	}

	// ProjectOptions configures a Project.
	ProjectOptions struct {
		// Name is used in logs. Empty means the base name of RootDir.
		Name string
		// RootDir must be an existing directory. Relative paths are made
		// absolute.
		RootDir string
		// InputDirs are subdirectories of RootDir scanned for staleness, in
		// order. Nil means DefaultInputDirs; an empty non-nil slice scans
		// RootDir only.
		InputDirs []string
		// OutputExt is the bundle suffix, including the leading dot. Empty
		// means DefaultOutputExt.
		OutputExt string
	}
)

// NewProject validates opts and creates a Project.
func NewProject(opts ProjectOptions) (*Project, error) {
	if strings.TrimSpace(opts.RootDir) == "" {
		return nil, fmt.Errorf("%w: root directory is empty", ErrInvalidProject)
	}
	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root %q: %w", ErrInvalidProject, opts.RootDir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidProject, root)
	}

	inputDirs := opts.InputDirs
	if inputDirs == nil {
		inputDirs = DefaultInputDirs
	}
	for _, d := range inputDirs {
		if err := validateInputDir(d); err != nil {
			return nil, err
		}
	}

	ext := opts.OutputExt
	if ext == "" {
		ext = DefaultOutputExt
	}
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
		return nil, fmt.Errorf("%w: output extension %q must look like \".vsix\"", ErrInvalidProject, ext)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(root)
	}

	return &Project{
		name:      name,
		rootDir:   root,
		inputDirs: slices.Clone(inputDirs),
		outputExt: ext,
	}, nil
}

func validateInputDir(d string) error {
	return checkRelativeDir("input directory", d, true)
}

// ValidateGeneratedDir reports an ErrInvalidProject error unless d names a
// directory strictly below a project root. Clean and staging remove such
// directories recursively.
func ValidateGeneratedDir(d string) error {
	return checkRelativeDir("generated directory", d, false)
}

func checkRelativeDir(kind, d string, allowRoot bool) error {
	clean := filepath.Clean(filepath.FromSlash(d))
	switch {
	case strings.TrimSpace(d) == "":
		return fmt.Errorf("%w: empty %s", ErrInvalidProject, kind)
	case filepath.IsAbs(clean) || filepath.VolumeName(clean) != "":
		return fmt.Errorf("%w: %s %q must be relative to the project root", ErrInvalidProject, kind, d)
	case clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)):
		return fmt.Errorf("%w: %s %q escapes the project root", ErrInvalidProject, kind, d)
	case clean == "." && !allowRoot:
		return fmt.Errorf("%w: %s %q is the project root", ErrInvalidProject, kind, d)
	}
	return nil
}

// Name returns the human-readable project name.
func (p *Project) Name() string { return p.name }

// RootDir returns the absolute project directory.
func (p *Project) RootDir() string { return p.rootDir }

// InputDirs returns a copy of the configured input subdirectories.
func (p *Project) InputDirs() []string { return slices.Clone(p.inputDirs) }

// OutputExt returns the bundle file suffix.
func (p *Project) OutputExt() string { return p.outputExt }

// OutputDir returns the directory searched for packaged bundles. It is the
// project root.
func (p *Project) OutputDir() string { return p.rootDir }

// ListOutputs returns every file below OutputDir whose name ends with the
// bundle suffix. Order is unspecified. Unreadable directories are skipped,
// so an unreadable root yields an empty result.
func (p *Project) ListOutputs() []string {
	var outputs []string
	_ = filepath.WalkDir(p.OutputDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), p.outputExt) {
			outputs = append(outputs, path)
		}
		return nil
	})
	return outputs
}

// NewBuildTask returns a task bound to p. It always succeeds.
func (p *Project) NewBuildTask(cfg TaskConfig) *BuildTask {
	return newBuildTask(p, cfg)
}

func (p *Project) String() string { return p.name }
