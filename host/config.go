package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumen-labs/lumenplug"
	"github.com/lumen-labs/lumenplug/manifest"
)

const (
	projectConfigName = "lumenplug.yaml"
	homeConfigName    = "config.yaml"
)

// Config is the declarative host startup config naming the installed
// plugin manifests.
type Config struct {
	Plugins map[string]PluginDeclaration `yaml:"plugins"`
}

// PluginDeclaration defines one plugin in lumenplug.yaml. The manifest
// path is resolved relative to the config file's directory.
type PluginDeclaration struct {
	Manifest string `yaml:"manifest"`
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

func (d PluginDeclaration) enabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// DiscoverConfigPath resolves the host config location with first-match
// semantics: explicit path, then ./lumenplug.yaml, then
// ~/.lumenplug/config.yaml.
func DiscoverConfigPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverConfigPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverConfigPathFrom is a testable variant of DiscoverConfigPath.
func DiscoverConfigPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 3)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectConfigName))
		candidates = append(candidates, filepath.Join(homeDir, ".lumenplug", homeConfigName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// If explicit path is set, not found is an error.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("config file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking config path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// LoadCatalog reads a host config, loads every enabled plugin manifest,
// and builds a catalog. A broken manifest fails the whole load: the
// host starts with all declared plugins or not at all.
//
// Plugins are added in declaration-name order so startup is
// deterministic regardless of YAML map iteration.
func LoadCatalog(configPath string, opts ...lumenplug.Option) (*Catalog, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(configPath)
	names := make([]string, 0, len(cfg.Plugins))
	for name := range cfg.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	catalog := NewCatalog()
	for _, name := range names {
		decl := cfg.Plugins[name]
		if !decl.enabled() {
			continue
		}
		if strings.TrimSpace(decl.Manifest) == "" {
			return nil, fmt.Errorf("host: plugin %q declares no manifest path", name)
		}

		manifestPath := decl.Manifest
		if !filepath.IsAbs(manifestPath) {
			manifestPath = filepath.Join(baseDir, manifestPath)
		}

		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("host: loading plugin %q: %w", name, err)
		}
		reg, err := lumenplug.New(m, opts...)
		if err != nil {
			return nil, fmt.Errorf("host: registering plugin %q: %w", name, err)
		}
		if err := catalog.Add(reg); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from caller
	if err != nil {
		return nil, fmt.Errorf("host: reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("host: parsing config %s: %w", path, err)
	}
	return &cfg, nil
}
