package provider

import (
	"time"

	"github.com/uhatikus/UAIssistant/model"
)

// FallbackText is the degraded-but-valid answer returned when a
// tool-calling loop or run poll exceeds its ceiling. End users see this
// instead of a raw provider error.
const FallbackText = "There is something wrong with this particular chat. Please, start new chat."

// LoopPolicy bounds every adapter's tool-calling loop. One shared,
// configurable policy applies across providers rather than per-adapter
// constants.
type LoopPolicy struct {
	// MaxToolIterations caps how many times a single user turn may
	// round-trip through tool execution.
	MaxToolIterations int
	// MaxPollIterations caps run-status polls per wait (OpenAI only).
	MaxPollIterations int
	// PollInterval is the fixed sleep between run-status polls.
	PollInterval time.Duration
	// Fallback replaces the answer when a ceiling is exceeded.
	Fallback string
}

// DefaultLoopPolicy mirrors the historical bounds: 10 tool iterations,
// 120 polls at half-second intervals.
func DefaultLoopPolicy() LoopPolicy {
	return LoopPolicy{
		MaxToolIterations: 10,
		MaxPollIterations: 120,
		PollInterval:      500 * time.Millisecond,
		Fallback:          FallbackText,
	}
}

func (p LoopPolicy) withDefaults() LoopPolicy {
	d := DefaultLoopPolicy()
	if p.MaxToolIterations <= 0 {
		p.MaxToolIterations = d.MaxToolIterations
	}
	if p.MaxPollIterations <= 0 {
		p.MaxPollIterations = d.MaxPollIterations
	}
	if p.PollInterval <= 0 {
		p.PollInterval = d.PollInterval
	}
	if p.Fallback == "" {
		p.Fallback = d.Fallback
	}
	return p
}

// fallbackItem is the user-visible placeholder appended when a loop or
// poll ceiling is exhausted without a final answer. It is marked
// internal so the broken turn is never replayed back to the model.
func (p LoopPolicy) fallbackItem() model.MessageItem {
	item := model.NewTextItem("internal_", model.RoleAssistant, p.Fallback)
	item.Internal = true
	return item
}
