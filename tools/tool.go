// Package tools holds the registry of callable tool functions, the
// dispatcher that executes them on the LLM's behalf, and the built-in
// data-analysis tools.
//
// Each tool declares an immutable Spec (name, description, ordered
// parameters). The registry renders specs into a generic schema shape
// that the provider layer converts into each provider's wire format.
package tools

import (
	"context"
	"fmt"

	"github.com/uhatikus/UAIssistant/model"
)

// Repository is the data-access handle tools read datasets through.
// Results are never cached or memoized by the dispatcher.
type Repository interface {
	Dataset(ctx context.Context, name string) (*model.Frame, error)
	ListDatasets(ctx context.Context) ([]string, error)
}

// Param describes one tool parameter. Type uses JSON-schema primitive
// names ("string", "number", "integer", "boolean", "array").
type Param struct {
	Name        string
	Type        string
	Description string
	Default     any
	Required    bool
}

// Spec is a tool's declared schema: derived once per process and
// immutable after startup.
type Spec struct {
	Name        string
	Description string
	Params      []Param
}

// Tool is a registered callable the LLM may invoke mid-conversation.
// Run returns a text summary for the LLM plus zero or more rich values
// for the frontend.
type Tool interface {
	Spec() Spec
	Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error)
}

// Args is the argument bag a provider parsed out of a tool directive.
// The accessors coerce loosely typed JSON values to what a tool needs.
type Args map[string]any

// String returns a string argument or def when absent or not a string.
func (a Args) String(key, def string) string {
	if v, ok := a[key].(string); ok && v != "" {
		return v
	}
	return def
}

// StringSlice returns a []string argument, tolerating []any elements.
func (a Args) StringSlice(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Float returns a numeric argument or def.
func (a Args) Float(key string, def float64) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// requireString fetches a mandatory string argument.
func (a Args) requireString(key string) (string, error) {
	v, ok := a[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}
