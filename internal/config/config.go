// Package config provides configuration management for the relay server and the chat client.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/cchalm/relaychat/internal/ai"
)

const (
	DefaultPort       = 5000
	DefaultChatAPIURL = "http://localhost:5000"
)

// Config holds the configuration for both the server and the chat client
type Config struct {
	// Server config
	Port     int    `toml:"port"`
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`

	// Client config
	ChatAPIURL string `toml:"chat_api_url"`

	Telemetry TelemetryConfig `toml:"telemetry"`
}

type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Port:       DefaultPort,
		Provider:   ai.ProviderOpenAI,
		ChatAPIURL: DefaultChatAPIURL,
	}
}

// Load builds a Config from the defaults, then the TOML file at path (if path is not empty), then environment
// variables. The model falls back to the provider's default when none of them sets it
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &config); err != nil {
			return Config{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return Config{}, err
	}

	if config.Model == "" {
		config.Model = ai.DefaultModel(config.Provider)
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	errs = append(errs, parseOptionalFromEnv(&c.Port, "PORT", strconv.Atoi))
	loadOptionalFromEnv(&c.Provider, "PROVIDER")
	loadOptionalFromEnv(&c.BaseURL, "PROVIDER_BASE_URL")
	loadOptionalFromEnv(&c.Model, "MODEL")
	loadOptionalFromEnv(&c.ChatAPIURL, "CHAT_API_URL")
	errs = append(errs, parseOptionalFromEnv(&c.Telemetry.Enabled, "TELEMETRY_ENABLED", strconv.ParseBool))
	loadOptionalFromEnv(&c.Telemetry.Endpoint, "OTLP_ENDPOINT")

	// The key variable depends on the provider, so read it last
	loadOptionalFromEnv(&c.APIKey, APIKeyEnv(c.Provider))

	return errors.Join(errs...)
}

// APIKeyEnv names the environment variable holding the key for the named provider
func APIKeyEnv(provider string) string {
	if provider == ai.ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "GROQ_API_KEY"
}

// Validate reports configuration that cannot work at all
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Provider {
	case ai.ProviderOpenAI, ai.ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider '%s', expected '%s' or '%s'", c.Provider, ai.ProviderOpenAI, ai.ProviderAnthropic)
	}
	return nil
}

// Warnings reports configuration the server can start with but that will make every exchange fail
func (c Config) Warnings() []string {
	var warnings []string
	if c.APIKey == "" {
		warnings = append(warnings, fmt.Sprintf("%s is not set; provider calls will fail", APIKeyEnv(c.Provider)))
	}
	return warnings
}

// Addr is the listen address for the server
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func loadOptionalFromEnv(dest *string, key string) {
	_ = parseOptionalFromEnv(dest, key, func(v string) (string, error) { return v, nil })
}

func parseOptionalFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) error {
	str := os.Getenv(key)
	if str == "" {
		return nil // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		return fmt.Errorf("failed to parse environment variable '%s' value '%s' as '%T': %w", key, str, *dest, err)
	}
	*dest = v
	return nil
}
