package provider

import (
	"context"

	"github.com/uhatikus/UAIssistant/model"
)

// modelTurn is one model response reduced to what the loop cares about:
// the plain-text parts and the tool directives, in emitted order.
type modelTurn struct {
	texts []string
	calls []model.ToolCall
}

// toolResult pairs a directive with the dispatcher's text output.
type toolResult struct {
	call   model.ToolCall
	output string
}

// turnFunc runs one model round-trip. The first invocation receives nil
// results; later invocations receive the batched outputs of every
// directive from the previous turn, in the order they were emitted.
// Implementations own the wire-format history and append both the tool
// results and the model's reply to it.
type turnFunc func(ctx context.Context, results []toolResult) (modelTurn, error)

// runToolLoop drives the shared tool-calling state machine for the
// stateless providers. It dispatches every directive of a turn before
// resubmitting (one batched follow-up per model turn, never one
// round-trip per tool) and stops when a turn carries no directives or
// the iteration ceiling is hit. textIDPrefix names the provider's
// synthetic identity for final text messages.
//
// On ceiling exhaustion the collected frontend items are returned with
// the policy's fallback text as the last entry; no error is raised.
func runToolLoop(ctx context.Context, policy LoopPolicy, dispatch ToolDispatcher, turn turnFunc, textIDPrefix string) ([]model.MessageItem, error) {
	policy = policy.withDefaults()

	var frontend []model.MessageItem

	current, err := turn(ctx, nil)
	if err != nil {
		return nil, err
	}

	for itr := 0; len(current.calls) > 0; itr++ {
		if itr >= policy.MaxToolIterations {
			return append(frontend, policy.fallbackItem()), nil
		}

		results := make([]toolResult, 0, len(current.calls))
		for _, call := range current.calls {
			output, items := dispatch.Call(ctx, call.Name, call.Arguments)
			results = append(results, toolResult{call: call, output: output})
			frontend = append(frontend, items...)
		}

		current, err = turn(ctx, results)
		if err != nil {
			return nil, err
		}
	}

	for _, text := range current.texts {
		cleaned := StripThinking(text)
		if cleaned == "" {
			continue
		}
		frontend = append(frontend, model.NewTextItem(textIDPrefix, model.RoleAssistant, cleaned))
	}
	return frontend, nil
}
