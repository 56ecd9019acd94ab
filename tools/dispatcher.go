package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uhatikus/UAIssistant/model"
)

// Dispatcher locates and executes tool functions on behalf of a
// provider adapter. Failures of any kind are recovered locally and
// reported back as the tool's own text output, never as an error to the
// caller: keeping the conversation alive lets the model retry or give
// up on its own.
type Dispatcher struct {
	registry *Registry
	repo     Repository
}

// NewDispatcher wires the registry and the data-access handle the tools
// read datasets through.
func NewDispatcher(registry *Registry, repo Repository) *Dispatcher {
	return &Dispatcher{registry: registry, repo: repo}
}

// Call executes the named tool with the given argument bag. It returns
// the text result for the LLM and the tool's rich frontend values,
// each wrapped into a timestamped internal Assistant message for
// persistence alongside the provider's primary reply.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (output string, frontend []model.MessageItem) {
	defer func() {
		if r := recover(); r != nil {
			output = runErrorText(name, fmt.Errorf("%v", r))
			frontend = nil
			slog.Warn("tool panicked", "tool", name, "panic", r)
		}
	}()

	tool, ok := d.registry.Lookup(name)
	if !ok {
		output = fmt.Sprintf("The function '%s' does not exist.", name)
		slog.Warn("unknown tool requested", "tool", name)
		return output, nil
	}

	text, values, err := tool.Run(ctx, d.repo, Args(args))
	if err != nil {
		slog.Warn("tool failed", "tool", name, "error", err)
		return runErrorText(name, err), nil
	}

	items := make([]model.MessageItem, 0, len(values))
	for _, value := range values {
		items = append(items, model.NewInternalItem(value))
	}
	return text, items
}

// runErrorText embeds the error in the tool's reported output together
// with an explicit hint for the model to stop retrying. The hint is a
// deliberate signal to the LLM, not a contract the dispatcher enforces.
func runErrorText(name string, err error) string {
	return fmt.Sprintf("Error running the function %s. Error %v. Consider to stop calling this function if you have tried more than 3 times.", name, err)
}
