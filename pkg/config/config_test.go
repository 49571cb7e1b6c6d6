package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MININOTES_TEST_PORT", "9100")
	p := writeFile(t, "name: notes\nport: ${MININOTES_TEST_PORT}\n")

	var cfg sample
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "notes" || cfg.Port != 9100 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	p := writeFile(t, "name: override\n")
	cfg := sample{Name: "default", Port: 8000}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "override" || cfg.Port != 8000 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRunsValidator(t *testing.T) {
	p := writeFile(t, "port: 0\n")
	var cfg sample
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 8000}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if err != nil || found {
		t.Fatalf("missing file: found=%v err=%v", found, err)
	}

	bad := sample{}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &bad); err == nil {
		t.Error("defaults should still be validated")
	}

	p := writeFile(t, "port: 9000\n")
	found, err = LoadOptional(p, &cfg)
	if err != nil || !found || cfg.Port != 9000 {
		t.Errorf("existing file: found=%v err=%v cfg=%+v", found, err, cfg)
	}
}
