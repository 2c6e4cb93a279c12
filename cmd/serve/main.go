// Package main provides the reference dual-protocol server. It exposes one
// agent over both the A2A JSON-RPC surface and the LangGraph Platform REST
// surface, on one shared port.
//
// Configuration is via environment variables:
//
//	JANUS_PORT              - Server port (default: 8080)
//	JANUS_LOG_LEVEL         - debug, info, warn, error (default: info)
//	JANUS_AGENT_NAME        - Agent name for discovery (default: janus)
//	JANUS_AGENT_DESCRIPTION - Agent description for discovery
//	JANUS_PROVIDER          - anthropic, openai, or google; empty runs the
//	                          echo fallback handler
//	JANUS_MODEL             - Model override (optional, provider default)
//	ANTHROPIC_API_KEY       - Anthropic API key
//	OPENAI_API_KEY          - OpenAI API key
//	GOOGLE_API_KEY          - Google API key
//
// Usage:
//
//	JANUS_PROVIDER=anthropic go run ./cmd/serve
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/janus"
	"github.com/spetersoncode/janus/a2a"
	"github.com/spetersoncode/janus/provider/anthropic"
	"github.com/spetersoncode/janus/provider/google"
	"github.com/spetersoncode/janus/provider/openai"
	"github.com/spetersoncode/janus/server"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	handler, err := buildHandler(cfg)
	if err != nil {
		slog.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	card := a2a.DefaultCard(cfg.AgentName, cfg.AgentDescription)
	srv := server.New(server.Config{Addr: ":" + cfg.Port}, card, handler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	provider := cfg.Provider
	if provider == "" {
		provider = "echo"
	}
	slog.Info("starting", "port", cfg.Port, "provider", provider)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// buildHandler wires the configured provider behind the generator handler,
// falling back to the echo handler when no provider is selected.
func buildHandler(cfg *Config) (janus.Handler, error) {
	switch cfg.Provider {
	case "":
		return janus.NewEchoHandler("Echo: "), nil
	case "anthropic":
		var opts []anthropic.ClientOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(anthropic.ChatModel(cfg.Model)))
		}
		return janus.NewGeneratorHandler(anthropic.New(cfg.AnthropicKey, opts...)), nil
	case "openai":
		var opts []openai.ClientOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		return janus.NewGeneratorHandler(openai.New(cfg.OpenAIKey, opts...)), nil
	case "google":
		var opts []google.ClientOption
		if cfg.Model != "" {
			opts = append(opts, google.WithModel(cfg.Model))
		}
		client, err := google.New(context.Background(), cfg.GoogleKey, opts...)
		if err != nil {
			return nil, err
		}
		return janus.NewGeneratorHandler(client), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
