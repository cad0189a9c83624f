package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/cchalm/relaychat/internal/relay"
	"github.com/cchalm/relaychat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat relay HTTP server",
	Long: `Starts the HTTP relay. Each POST /api/chat request is forwarded, with its
conversation history, to the configured provider and answered with the reply.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&flags.port, "port", server.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&flags.provider, "provider", "", "Provider to relay to: 'openai' (OpenAI-compatible, Groq by default) or 'anthropic'")
	serveCmd.Flags().StringVar(&flags.model, "model", "", "Model to request from the provider")
	serveCmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Override the provider API base URL")
	serveCmd.Flags().BoolVar(&flags.telemetry, "telemetry", false, "Export traces over OTLP/HTTP")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	log.Printf("Starting relaychat server")
	log.Printf("Provider: %s, model: %s", cfg.Provider, cfg.Model)
	for _, warning := range cfg.Warnings() {
		log.Printf("WARNING: %s", warning)
	}

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	provider, err := createProvider()
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	service := relay.NewService(provider, cfg.Model, telemetryProvider.Tracer())
	srv := server.New(service)

	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}
