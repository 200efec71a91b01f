// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile reads a dotenv file and merges its variables into env.
// Relative paths are resolved against basePath. A trailing '?' marks the
// file optional: a missing optional file leaves env untouched.
func LoadEnvFile(env map[string]string, path, basePath string) error {
	optional := strings.HasSuffix(path, "?")
	path = strings.TrimSuffix(path, "?")
	if path == "" {
		return nil
	}

	fullPath := filepath.FromSlash(path)
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(basePath, fullPath)
	}

	vars, err := godotenv.Read(fullPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file '%s': %w", path, err)
	}

	for k, v := range vars {
		env[k] = v
	}
	return nil
}
