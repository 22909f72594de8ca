// Package config holds the dshpipe settings, read through viper from flags, the
// environment and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/utils/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Setting keys
const (
	KeyCatalog        = "catalog"
	KeyStore          = "store"
	KeyTenantName     = "tenant.name"
	KeyTenantPlatform = "tenant.platform"
	KeyTenantRealm    = "tenant.realm"
	KeyLogLevel       = "log-level"
	KeyOutput         = "output"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. DSHPIPE_TENANT_NAME
	EnvPrefix = "DSHPIPE"

	configName = "dshpipe"
)

// Output formats
const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// Settings contains application-wide configuration
type Settings struct {
	// Catalog is a directory of realization files. When empty the catalog is read
	// from the store.
	Catalog  string            `mapstructure:"catalog"`
	Store    string            `mapstructure:"store"`
	Tenant   descriptor.Tenant `mapstructure:"tenant"`
	LogLevel string            `mapstructure:"log-level"`
	Output   string            `mapstructure:"output"`
}

// ConfigDir returns $HOME/.config/dshpipe
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", configName), nil
}

// SetDefaults registers default values for every key, which also makes every key
// visible to environment overrides
func SetDefaults(v *viper.Viper) {
	store := configName + ".db"
	if dir, err := ConfigDir(); err == nil {
		store = filepath.Join(dir, store)
	}

	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeyStore, store)
	v.SetDefault(KeyTenantName, "")
	v.SetDefault(KeyTenantPlatform, "")
	v.SetDefault(KeyTenantRealm, "")
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyOutput, OutputText)
}

// Configure points v at the config file and the environment. An explicit file
// must exist; the default file is optional.
func Configure(v *viper.Viper, file string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		v.AddConfigPath(dir)
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			logger.Debug("No config file found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	logger.Info("Using config file", zap.String("file", v.ConfigFileUsed()))
	return nil
}

// Load reads the settings from v
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the settings are usable
func (s *Settings) Validate() error {
	switch strings.ToLower(s.Output) {
	case OutputText, OutputYAML, OutputJSON:
		s.Output = strings.ToLower(s.Output)
	default:
		return fmt.Errorf("unknown output format '%s' (expected %s, %s or %s)", s.Output, OutputText, OutputYAML, OutputJSON)
	}
	if s.Catalog == "" && s.Store == "" {
		return fmt.Errorf("either %s or %s must be set", KeyCatalog, KeyStore)
	}
	return nil
}

// RequireTenant checks that a tenant is configured, which compiling needs
func (s *Settings) RequireTenant() error {
	if s.Tenant.Name == "" || s.Tenant.Platform == "" {
		return fmt.Errorf("tenant is not configured: set %s and %s (or %s_TENANT_NAME and %s_TENANT_PLATFORM)",
			KeyTenantName, KeyTenantPlatform, EnvPrefix, EnvPrefix)
	}
	return nil
}
