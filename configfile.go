package mallclient

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lingbai/mallclient/guard"
)

// configFile is the YAML shape accepted by LoadConfig. Only the fields a
// deployment actually overrides need to appear; everything else keeps its
// default.
type configFile struct {
	HTTP struct {
		BaseURL          string   `yaml:"base_url"`
		TimeoutSeconds   int      `yaml:"timeout_seconds"`
		PublicPaths      []string `yaml:"public_paths"`
		NonCriticalPaths []string `yaml:"non_critical_paths"`
	} `yaml:"http"`
	CSRF struct {
		CookieNames []string `yaml:"cookie_names"`
		HeaderNames []string `yaml:"header_names"`
	} `yaml:"csrf"`
	Storage struct {
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"storage"`
	Routes *guard.Routes `yaml:"routes"`
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("mallclient: read config: %w", err)
	}

	// Route overrides merge over defaults field by field.
	routes := cfg.Routes
	file := configFile{Routes: &routes}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("mallclient: parse config: %w", err)
	}

	if file.HTTP.BaseURL != "" {
		cfg.HTTP.BaseURL = file.HTTP.BaseURL
	}
	if file.HTTP.TimeoutSeconds > 0 {
		cfg.HTTP.Timeout = time.Duration(file.HTTP.TimeoutSeconds) * time.Second
	}
	if len(file.HTTP.PublicPaths) > 0 {
		cfg.HTTP.PublicPaths = file.HTTP.PublicPaths
	}
	if len(file.HTTP.NonCriticalPaths) > 0 {
		cfg.HTTP.NonCriticalPaths = file.HTTP.NonCriticalPaths
	}
	if len(file.CSRF.CookieNames) > 0 {
		cfg.CSRF.CookieNames = file.CSRF.CookieNames
	}
	if len(file.CSRF.HeaderNames) > 0 {
		cfg.CSRF.HeaderNames = file.CSRF.HeaderNames
	}
	if file.Storage.KeyPrefix != "" {
		cfg.Storage.KeyPrefix = file.Storage.KeyPrefix
	}
	cfg.Routes = routes

	return cfg, nil
}
