// Package config loads server configuration from an optional TOML file,
// a .env file, and environment overrides. API keys come from the
// environment only and are never written to the config file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ProviderConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

type OllamaConfig struct {
	Host string `toml:"host"`
}

type LoopConfig struct {
	MaxToolIterations  int `toml:"max_tool_iterations"`
	MaxPollIterations  int `toml:"max_poll_iterations"`
	PollIntervalMillis int `toml:"poll_interval_ms"`
}

type fileConfig struct {
	Addr         string         `toml:"addr"`
	DatabasePath string         `toml:"database_path"`
	OpenAI       ProviderConfig `toml:"openai"`
	Anthropic    ProviderConfig `toml:"anthropic"`
	Gemini       ProviderConfig `toml:"gemini"`
	Ollama       OllamaConfig   `toml:"ollama"`
	Loop         LoopConfig     `toml:"loop"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Addr         string
	DatabasePath string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	GeminiAPIKey     string
	GeminiBaseURL    string
	OllamaHost       string

	MaxToolIterations int
	MaxPollIterations int
	PollInterval      time.Duration

	Debug bool
}

// Load resolves the configuration. path may be empty; a missing config
// file is not an error, the defaults and environment apply.
func Load(path string) (*Config, error) {
	// Best effort; a missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:         "0.0.0.0:8000",
		DatabasePath: "uaissistant.db",
		OllamaHost:   "http://localhost:11434",
	}

	if path != "" {
		var fc fileConfig
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			if fc.Addr != "" {
				cfg.Addr = fc.Addr
			}
			if fc.DatabasePath != "" {
				cfg.DatabasePath = fc.DatabasePath
			}
			cfg.OpenAIBaseURL = fc.OpenAI.BaseURL
			cfg.AnthropicBaseURL = fc.Anthropic.BaseURL
			cfg.GeminiBaseURL = fc.Gemini.BaseURL
			if fc.Ollama.Host != "" {
				cfg.OllamaHost = fc.Ollama.Host
			}
			cfg.MaxToolIterations = fc.Loop.MaxToolIterations
			cfg.MaxPollIterations = fc.Loop.MaxPollIterations
			cfg.PollInterval = time.Duration(fc.Loop.PollIntervalMillis) * time.Millisecond
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if addr := os.Getenv("UAISSISTANT_ADDR"); addr != "" {
		c.Addr = addr
	}
	if dbPath := os.Getenv("UAISSISTANT_DB"); dbPath != "" {
		c.DatabasePath = dbPath
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	c.Debug = checkDebug()
}

func checkDebug() bool {
	debug := os.Getenv("UAISSISTANT_DEBUG")
	return debug == "true" || debug == "1"
}
