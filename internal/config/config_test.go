package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dshpipe.yaml")
	content := `
catalog: /srv/catalog
tenant:
  name: greenbox
  platform: poc
output: YAML
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("DSHPIPE_TENANT_PLATFORM", "prod")
	t.Setenv("DSHPIPE_LOG_LEVEL", "debug")

	v := viper.New()
	if err := Configure(v, path); err != nil {
		t.Fatalf("Failed to configure: %v", err)
	}
	s, err := Load(v)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if s.Catalog != "/srv/catalog" {
		t.Errorf("Catalog = %s", s.Catalog)
	}
	if s.Tenant.Name != "greenbox" {
		t.Errorf("Tenant.Name = %s", s.Tenant.Name)
	}
	if s.Tenant.Platform != "prod" {
		t.Errorf("Tenant.Platform = %s, want env override prod", s.Tenant.Platform)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", s.LogLevel)
	}
	if s.Output != OutputYAML {
		t.Errorf("Output = %s, want normalized yaml", s.Output)
	}
	if s.Store == "" {
		t.Error("Store should default to a path")
	}
	if err := s.RequireTenant(); err != nil {
		t.Errorf("RequireTenant: %v", err)
	}
}

func TestConfigureMissingExplicitFile(t *testing.T) {
	v := viper.New()
	if err := Configure(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestConfigureWithoutDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	if err := Configure(v, ""); err != nil {
		t.Fatalf("Missing default config file should not fail: %v", err)
	}
	s, err := Load(v)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if s.Output != OutputText || s.LogLevel != "warn" {
		t.Errorf("Unexpected defaults: %+v", s)
	}
	if err := s.RequireTenant(); err == nil {
		t.Error("Expected RequireTenant to fail without tenant")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"valid", Settings{Store: "x.db", Output: "json"}, false},
		{"bad output", Settings{Store: "x.db", Output: "xml"}, true},
		{"no catalog source", Settings{Output: "text"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
