package provider

import (
	"fmt"
	"time"

	"github.com/uhatikus/UAIssistant/model"
)

// timeNow is stubbed in tests that assert on item timestamps.
var timeNow = time.Now

// New builds the adapter for the given source. Every adapter shares the
// same Deps so the registry, dispatcher and replay history behave
// identically across providers.
func New(cfg Config, deps Deps) (model.LLM, error) {
	switch cfg.Source {
	case model.SourceOpenAI:
		return NewOpenAILLM(cfg.BaseURL, cfg.APIKey, deps)
	case model.SourceAnthropic:
		return NewAnthropicLLM(cfg.BaseURL, cfg.APIKey, deps)
	case model.SourceGemini:
		return NewGeminiLLM(cfg.BaseURL, cfg.APIKey, deps)
	case model.SourceOllama:
		return NewOllamaLLM(cfg.BaseURL, deps)
	default:
		return nil, fmt.Errorf("unsupported LLM source %q", cfg.Source)
	}
}
