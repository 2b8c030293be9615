package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tada/internal/log"
)

const defaultConfigHeader = `# tada configuration
#
# store.backend: memory | json | sqlite
# store.path:    data file (default: ./todos.json or ./.tada/tada.db)
# ui.locale:     pt (baixa/média/alta) | en (low/medium/high)
# ui.theme:      classic | neon | mono
`

// DefaultConfigYAML renders Defaults() as a commented YAML document.
func DefaultConfigYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(defaultConfigHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Defaults()); err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding default config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefaultConfig writes the default config to configPath, creating
// parent directories. An existing file is left untouched.
func WriteDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists: %s", configPath)
	}
	data, err := DefaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	log.Info(log.CatConfig, "wrote default config", "path", configPath)
	return nil
}
