package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cchalm/relaychat/internal/ai"
	"github.com/cchalm/relaychat/internal/config"
)

var (
	cfg        = config.Default()
	configPath string

	// Flag values. They only take effect when set explicitly, so the environment and config file are not
	// overridden by flag defaults
	flags struct {
		port       int
		provider   string
		model      string
		baseURL    string
		chatAPIURL string
		telemetry  bool
	}
)

// applyFlagOverrides copies explicitly set flags over the loaded configuration
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("port") {
		c.Port = flags.port
	}
	if changed("provider") && flags.provider != c.Provider {
		c.Provider = flags.provider
		if !changed("model") {
			c.Model = ai.DefaultModel(c.Provider)
		}
		c.APIKey = ""
		loadAPIKey(c)
	}
	if changed("model") {
		c.Model = flags.model
	}
	if changed("base-url") {
		c.BaseURL = flags.baseURL
	}
	if changed("url") {
		c.ChatAPIURL = flags.chatAPIURL
	}
	if changed("telemetry") {
		c.Telemetry.Enabled = flags.telemetry
	}
}
