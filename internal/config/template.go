package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed formmap.yaml
var template []byte

// ErrConfigExists is returned by WriteTemplate when path already exists
var ErrConfigExists = errors.New("config file already exists")

// WriteTemplate writes a commented config file to path, refusing to overwrite
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, template, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
