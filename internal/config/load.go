package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override, e.g. EDM_REPOS_OWNER.
const EnvPrefix = "EDM_REPOS_"

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = ".edm-repos.yaml"

// DefaultEnvFiles are loaded (if present) before the environment is parsed.
// Variables already set in the process environment are not overwritten.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadFile overlays the YAML file at path onto c. A missing file is not an
// error when optional is true.
func (c *Config) LoadFile(path string, optional bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnvFiles loads the existing files among paths into the process
// environment and returns how many were found.
func LoadEnvFiles(paths []string) (int, error) {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// LoadEnv overlays EDM_REPOS_* variables onto c. Unset variables leave the
// current values alone.
func (c *Config) LoadEnv() error {
	opts := env.Options{Prefix: EnvPrefix}
	if err := env.ParseWithOptions(&c.Target, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if err := env.ParseWithOptions(&c.Protection, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if err := env.ParseWithOptions(&c.Output, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if err := env.ParseWithOptions(&c.Runtime, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
