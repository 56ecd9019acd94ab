// Package cmd contains the Cobra commands for the UAIssistant backend.
//
// The root command starts the HTTP server directly; serve exists as an
// explicit alias. All runtime configuration comes from the config file
// and the environment, not from flags, except the two paths.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/uhatikus/UAIssistant/assistant"
	"github.com/uhatikus/UAIssistant/config"
	"github.com/uhatikus/UAIssistant/model"
	"github.com/uhatikus/UAIssistant/provider"
	"github.com/uhatikus/UAIssistant/server"
	"github.com/uhatikus/UAIssistant/storage"
	"github.com/uhatikus/UAIssistant/tools"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "uaissistant",
	Short: "LLM assistant backend with data-analysis tools",
	Long: `UAIssistant is a backend that lets OpenAI, Anthropic, Gemini and
local Ollama models act as data-analysis assistants. Assistants call a
fixed set of registered tools (dataset inspection, statistics, plots,
simple modeling) through each provider's tool-calling protocol, and
every conversation is persisted in SQLite.

Providers are enabled by setting their API keys:
  OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY
Ollama needs no key; set OLLAMA_HOST to use a non-local server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (TOML)")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := tools.MustNewRegistry(tools.DefaultTools()...)
	dispatcher := tools.NewDispatcher(registry, store)

	policy := provider.DefaultLoopPolicy()
	if cfg.MaxToolIterations > 0 {
		policy.MaxToolIterations = cfg.MaxToolIterations
	}
	if cfg.MaxPollIterations > 0 {
		policy.MaxPollIterations = cfg.MaxPollIterations
	}
	if cfg.PollInterval > 0 {
		policy.PollInterval = cfg.PollInterval
	}

	deps := provider.Deps{
		Schemas:    registry,
		Dispatcher: dispatcher,
		History:    store,
		Policy:     policy,
	}

	llms, err := buildProviders(cfg, deps)
	if err != nil {
		return err
	}
	if len(llms) == 0 {
		return fmt.Errorf("no providers configured: set at least one of OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, or run an Ollama server")
	}

	service := assistant.NewService(store, llms)
	srv := server.New(cfg.Addr, service)
	return srv.Start(ctx)
}

// buildProviders instantiates one adapter per configured source. Ollama
// is always wired since it needs no credentials.
func buildProviders(cfg *config.Config, deps provider.Deps) ([]model.LLM, error) {
	configs := []provider.Config{
		{Source: model.SourceOpenAI, APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL},
		{Source: model.SourceAnthropic, APIKey: cfg.AnthropicAPIKey, BaseURL: cfg.AnthropicBaseURL},
		{Source: model.SourceGemini, APIKey: cfg.GeminiAPIKey, BaseURL: cfg.GeminiBaseURL},
		{Source: model.SourceOllama, BaseURL: cfg.OllamaHost},
	}

	var llms []model.LLM
	for _, pc := range configs {
		if pc.Source != model.SourceOllama && pc.APIKey == "" {
			slog.Debug("provider disabled, no API key", "source", pc.Source)
			continue
		}
		llm, err := provider.New(pc, deps)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s provider: %w", pc.Source, err)
		}
		llms = append(llms, llm)
	}
	return llms, nil
}
