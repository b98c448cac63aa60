package engram

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig(filepath.Join(t.TempDir(), "engram.db"))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on DefaultConfig error = %v", err)
	}
}

func TestValidateRejectsEmptyPath(t *testing.T) {
	cfg := DefaultConfig("")
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with empty path should error")
	}
}

func TestValidateRejectsBadDownscaleFactor(t *testing.T) {
	cfg := DefaultConfig("engram.db")
	cfg.DownscaleFactor = 1.5
	if err := cfg.Validate(); !errors.Is(err, ErrConfigError) {
		t.Fatalf("Validate() error = %v, want ErrConfigError", err)
	}
	cfg.DownscaleFactor = 0
	if err := cfg.Validate(); !errors.Is(err, ErrConfigError) {
		t.Fatalf("Validate() error = %v, want ErrConfigError", err)
	}
}

func TestValidateRejectsNonPositiveSessionCapacity(t *testing.T) {
	cfg := DefaultConfig("engram.db")
	cfg.SessionCapacity = 0
	if err := cfg.Validate(); !errors.Is(err, ErrConfigError) {
		t.Fatalf("Validate() error = %v, want ErrConfigError", err)
	}
}

func TestValidateRejectsNonPositiveAnomalyWindow(t *testing.T) {
	cfg := DefaultConfig("engram.db")
	cfg.AnomalyWindow = -1
	if err := cfg.Validate(); !errors.Is(err, ErrConfigError) {
		t.Fatalf("Validate() error = %v, want ErrConfigError", err)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data, err := yaml.Marshal(map[string]any{
		"path":             filepath.Join(t.TempDir(), "engram.db"),
		"session_capacity": 12,
		"alpha":            0.2,
	})
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.SessionCapacity != 12 {
		t.Fatalf("SessionCapacity = %d, want 12", cfg.SessionCapacity)
	}
	if cfg.Alpha != 0.2 {
		t.Fatalf("Alpha = %v, want 0.2", cfg.Alpha)
	}
	// Unset fields should retain DefaultConfig's values.
	if cfg.Mu1 != 0.15 {
		t.Fatalf("Mu1 = %v, want default 0.15 for unset field", cfg.Mu1)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("LoadConfig() on missing file should error")
	}
}

func TestPresetBundles(t *testing.T) {
	names := []string{"chatbot", "task-agent", "personal-assistant", "researcher"}
	for _, name := range names {
		cfg, err := Preset(name, filepath.Join(t.TempDir(), "engram.db"))
		if err != nil {
			t.Fatalf("Preset(%q) error = %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Preset(%q) produced invalid config: %v", name, err)
		}
	}
}

func TestPresetUnknownName(t *testing.T) {
	if _, err := Preset("nonexistent", "engram.db"); !errors.Is(err, ErrConfigError) {
		t.Fatalf("Preset(unknown) error = %v, want ErrConfigError", err)
	}
}
