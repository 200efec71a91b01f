// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"

	"extbuild/internal/runtime"
)

// DefaultPackageManager is the package manager binary used when none is configured.
const DefaultPackageManager = "npm"

// NPM installs tools and project dependencies with an npm-compatible
// package manager.
type NPM struct {
	// Binary is the package manager program. Empty means DefaultPackageManager.
	Binary string
	// Env is layered on top of the inherited environment for every call.
	Env  map[string]string
	exec runtime.Executor
}

// NewNPM creates an NPM wrapper that launches processes through exec.
func NewNPM(exec runtime.Executor, binary string, env map[string]string) *NPM {
	if binary == "" {
		binary = DefaultPackageManager
	}
	return &NPM{Binary: binary, Env: env, exec: exec}
}

// InstallTool installs a named package into dir's local tool cache
// (dir/node_modules).
func (n *NPM) InstallTool(ctx context.Context, tool, dir string) error {
	return n.run(ctx, dir, "install", tool)
}

// InstallDependencies installs the dependencies declared in dir's manifest.
func (n *NPM) InstallDependencies(ctx context.Context, dir string) error {
	return n.run(ctx, dir, "install")
}

func (n *NPM) run(ctx context.Context, dir string, args ...string) error {
	cmd := runtime.Command{Name: n.Binary, Args: args, Dir: dir, Env: n.Env}
	if err := n.exec.Run(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("%s in %s: %w", cmd, dir, err)
	}
	return nil
}
