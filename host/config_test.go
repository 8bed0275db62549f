package host

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestManifest(t *testing.T, dir, plugin string) string {
	t.Helper()
	path := filepath.Join(dir, plugin+".yaml")
	content := []byte(
		"name: " + plugin + "\n" +
			"display_name: Test Plugin\n" +
			"contributions:\n" +
			"  commands:\n" +
			"    - id: " + plugin + ".run\n" +
			"      python_name: " + plugin + ".mod:run\n" +
			"      title: Run\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestDiscoverConfigPathFrom_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(cfgPath, []byte("plugins: {}\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	got, found, err := DiscoverConfigPathFrom(cfgPath, dir, dir)
	if err != nil {
		t.Fatalf("DiscoverConfigPathFrom() error = %v", err)
	}
	if !found || got != cfgPath {
		t.Errorf("got (%q, %v)", got, found)
	}
}

func TestDiscoverConfigPathFrom_ExplicitPathMissingIsError(t *testing.T) {
	dir := t.TempDir()
	_, _, err := DiscoverConfigPathFrom(filepath.Join(dir, "absent.yaml"), dir, dir)
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestDiscoverConfigPathFrom_ProjectBeforeHome(t *testing.T) {
	cwd := t.TempDir()
	home := t.TempDir()

	homeCfg := filepath.Join(home, ".lumenplug", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(homeCfg), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(homeCfg, []byte("plugins: {}\n"), 0o600); err != nil {
		t.Fatalf("writing home config: %v", err)
	}

	// Only the home config exists.
	got, found, err := DiscoverConfigPathFrom("", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverConfigPathFrom() error = %v", err)
	}
	if !found || got != homeCfg {
		t.Errorf("got (%q, %v), want home config", got, found)
	}

	// A project config takes precedence.
	projectCfg := filepath.Join(cwd, "lumenplug.yaml")
	if err := os.WriteFile(projectCfg, []byte("plugins: {}\n"), 0o600); err != nil {
		t.Fatalf("writing project config: %v", err)
	}
	got, found, err = DiscoverConfigPathFrom("", cwd, home)
	if err != nil {
		t.Fatalf("DiscoverConfigPathFrom() error = %v", err)
	}
	if !found || got != projectCfg {
		t.Errorf("got (%q, %v), want project config", got, found)
	}
}

func TestDiscoverConfigPathFrom_NoConfigAnywhere(t *testing.T) {
	_, found, err := DiscoverConfigPathFrom("", t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverConfigPathFrom() error = %v", err)
	}
	if found {
		t.Error("found should be false when no config exists")
	}
}

func TestLoadCatalog_LoadsDeclaredPlugins(t *testing.T) {
	dir := t.TempDir()
	writeTestManifest(t, dir, "alpha")
	writeTestManifest(t, dir, "beta")

	cfgPath := filepath.Join(dir, "lumenplug.yaml")
	cfg := []byte(`plugins:
  beta:
    manifest: beta.yaml
  alpha:
    manifest: alpha.yaml
`)
	if err := os.WriteFile(cfgPath, cfg, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	catalog, err := LoadCatalog(cfgPath)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	plugins := catalog.Plugins()
	if len(plugins) != 2 {
		t.Fatalf("got %d plugins, want 2", len(plugins))
	}
	// Declaration-name order, not YAML map order.
	if plugins[0].Name != "alpha" || plugins[1].Name != "beta" {
		t.Errorf("plugin order = %v, want alpha then beta", plugins)
	}
}

func TestLoadCatalog_SkipsDisabledPlugins(t *testing.T) {
	dir := t.TempDir()
	writeTestManifest(t, dir, "alpha")
	writeTestManifest(t, dir, "beta")

	cfgPath := filepath.Join(dir, "lumenplug.yaml")
	cfg := []byte(`plugins:
  alpha:
    manifest: alpha.yaml
  beta:
    manifest: beta.yaml
    enabled: false
`)
	if err := os.WriteFile(cfgPath, cfg, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	catalog, err := LoadCatalog(cfgPath)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	plugins := catalog.Plugins()
	if len(plugins) != 1 || plugins[0].Name != "alpha" {
		t.Errorf("plugins = %v, want alpha only", plugins)
	}
}

func TestLoadCatalog_BrokenManifestFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestManifest(t, dir, "alpha")

	// beta's manifest has a dangling widget reference.
	broken := []byte(`name: beta
contributions:
  widgets:
    - command: beta.missing
      display_name: Broken
`)
	if err := os.WriteFile(filepath.Join(dir, "beta.yaml"), broken, 0o600); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	cfgPath := filepath.Join(dir, "lumenplug.yaml")
	cfg := []byte(`plugins:
  alpha:
    manifest: alpha.yaml
  beta:
    manifest: beta.yaml
`)
	if err := os.WriteFile(cfgPath, cfg, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadCatalog(cfgPath); err == nil {
		t.Fatal("expected whole load to fail on one broken manifest")
	}
}

func TestLoadCatalog_MissingManifestPath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lumenplug.yaml")
	cfg := []byte(`plugins:
  alpha: {}
`)
	if err := os.WriteFile(cfgPath, cfg, 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadCatalog(cfgPath); err == nil {
		t.Fatal("expected error for plugin with no manifest path")
	}
}
