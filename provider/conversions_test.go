package provider

import (
	"reflect"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/uhatikus/UAIssistant/model"
)

func sampleSchemas() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_dataset_columns",
			Description: "Lists the columns of a dataset.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"dataset_name": map[string]any{
						"type":        "string",
						"description": "Name of the dataset.",
					},
					"target_columns": map[string]any{
						"type":        "array",
						"description": "Columns to analyse.",
						"default":     []string{},
					},
				},
				Required: []string{"dataset_name"},
			},
		},
	}
}

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "valid object",
			input: `{"dataset_name": "iris", "bins": 20}`,
			want:  map[string]any{"dataset_name": "iris", "bins": float64(20)},
		},
		{
			name:  "malformed json yields empty map",
			input: `{"dataset_name": `,
			want:  map[string]any{},
		},
		{
			name:  "empty string yields empty map",
			input: "",
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseToolArguments(tt.input)
			if got == nil {
				t.Fatal("arguments map must never be nil")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertToolsToOpenAI(t *testing.T) {
	result := ConvertToolsToOpenAI(sampleSchemas())

	// code_interpreter always leads, then the registered functions.
	if len(result) != 2 {
		t.Fatalf("tool count: got %d, want 2", len(result))
	}
	if result[0].OfCodeInterpreter == nil {
		t.Error("first tool must be code_interpreter")
	}
	fn := result[1].OfFunction
	if fn == nil {
		t.Fatal("second tool must be a function")
	}
	if fn.Function.Name != "get_dataset_columns" {
		t.Errorf("function name: got %q", fn.Function.Name)
	}
	required, ok := fn.Function.Parameters["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "dataset_name" {
		t.Errorf("required: got %v", fn.Function.Parameters["required"])
	}
}

func TestConvertToolsToAnthropic(t *testing.T) {
	result := ConvertToolsToAnthropic(sampleSchemas())
	if len(result) != 1 {
		t.Fatalf("tool count: got %d, want 1", len(result))
	}
	tool := result[0].OfTool
	if tool == nil {
		t.Fatal("expected a plain tool param")
	}
	if tool.Name != "get_dataset_columns" {
		t.Errorf("name: got %q", tool.Name)
	}
	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "dataset_name" {
		t.Errorf("required: got %v", tool.InputSchema.Required)
	}

	if got := ConvertToolsToAnthropic(nil); got != nil {
		t.Errorf("empty schemas: got %v, want nil", got)
	}
}

func TestConvertToolsToGemini(t *testing.T) {
	result := ConvertToolsToGemini(sampleSchemas())
	if len(result) != 1 {
		t.Fatalf("declaration count: got %d, want 1", len(result))
	}
	decl := result[0]
	if decl.Name != "get_dataset_columns" {
		t.Errorf("name: got %q", decl.Name)
	}
	props := decl.Parameters.Properties
	if props["dataset_name"].Type != "STRING" {
		t.Errorf("dataset_name type: got %q", props["dataset_name"].Type)
	}
	arr := props["target_columns"]
	if arr.Type != "ARRAY" || arr.Items == nil {
		t.Errorf("target_columns must be an ARRAY with items, got %+v", arr)
	}
	// Gemini's dialect has no default field, so defaults fold into the
	// description.
	if !strings.Contains(arr.Description, "Default value:") {
		t.Errorf("default not folded into description: %q", arr.Description)
	}
}

func TestConvertToolsToOllama(t *testing.T) {
	result := ConvertToolsToOllama(sampleSchemas())
	if len(result) != 1 {
		t.Fatalf("tool count: got %d, want 1", len(result))
	}
	fn := result[0].Function
	if fn.Name != "get_dataset_columns" {
		t.Errorf("name: got %q", fn.Name)
	}
	if got := fn.Parameters.Properties["dataset_name"].Type; len(got) != 1 || got[0] != "string" {
		t.Errorf("dataset_name type: got %v", got)
	}
}

func replayFixture() []model.MessageEntity {
	text := func(role model.Role, msg string) model.MessageEntity {
		return model.MessageEntity{
			Role: role,
			Value: model.MessageValue{
				Type:    model.MessageTypeText,
				Content: map[string]any{"message": msg},
			},
		}
	}
	plot := model.MessageEntity{
		Role: model.RoleAssistant,
		Value: model.MessageValue{
			Type:    model.MessageTypePlot,
			Content: map[string]any{"raw_json": "{}"},
		},
	}
	return []model.MessageEntity{
		text(model.RoleUser, "plot the iris data"),
		plot,
		text(model.RoleAssistant, "here is the plot"),
	}
}

func TestReplayForGeminiRoleMapping(t *testing.T) {
	contents := ReplayForGemini(replayFixture())

	// The plot message carries no text and must not replay.
	if len(contents) != 2 {
		t.Fatalf("content count: got %d, want 2", len(contents))
	}
	if contents[0].Role != "user" {
		t.Errorf("first role: got %q, want user", contents[0].Role)
	}
	if contents[1].Role != "model" {
		t.Errorf("second role: got %q, want model", contents[1].Role)
	}
	if contents[1].Parts[0].Text != "here is the plot" {
		t.Errorf("second text: got %q", contents[1].Parts[0].Text)
	}
}

func TestReplayForOllama(t *testing.T) {
	messages := ReplayForOllama(replayFixture())
	if len(messages) != 2 {
		t.Fatalf("message count: got %d, want 2", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("roles: got %q, %q", messages[0].Role, messages[1].Role)
	}
}

func TestReplayForAnthropic(t *testing.T) {
	messages := ReplayForAnthropic(replayFixture())
	if len(messages) != 2 {
		t.Fatalf("message count: got %d, want 2", len(messages))
	}
	if messages[0].Role != "user" {
		t.Errorf("first role: got %q, want user", messages[0].Role)
	}
	if messages[1].Role != "assistant" {
		t.Errorf("second role: got %q, want assistant", messages[1].Role)
	}
}
