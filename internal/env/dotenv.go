// Package env loads KEY=VALUE files into the process environment.
package env

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadFromDir loads dir/.env
func LoadFromDir(dir string) error {
	return Load(filepath.Join(dir, ".env"))
}

// Load sets the variables listed in path. Variables already present in the
// environment keep their values, and a missing file is not an error.
func Load(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
