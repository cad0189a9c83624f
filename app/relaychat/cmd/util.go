package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cchalm/relaychat/internal/ai"
	"github.com/cchalm/relaychat/internal/config"
	"github.com/cchalm/relaychat/internal/telemetry"
	"github.com/cchalm/relaychat/internal/transport"
)

// upstreamTimeout bounds a single provider call
const upstreamTimeout = 60 * time.Second

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

// loadAPIKey reads the key for the configured provider from the environment
func loadAPIKey(c *config.Config) {
	if key := os.Getenv(config.APIKeyEnv(c.Provider)); key != "" {
		c.APIKey = key
	}
}

func createProvider() (ai.Provider, error) {
	return ai.NewProvider(ai.ProviderConfig{
		Name:       cfg.Provider,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: transport.NewHTTPClient(upstreamTimeout),
	})
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.TelemetryConfig{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceVersion: versionInfo.version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}
