package tools

import (
	"context"
	"testing"

	"github.com/uhatikus/UAIssistant/model"
)

// stubTool is a configurable tool for registry and dispatcher tests.
type stubTool struct {
	spec Spec
	run  func(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error)
}

func (s *stubTool) Spec() Spec { return s.spec }

func (s *stubTool) Run(ctx context.Context, repo Repository, args Args) (string, []model.MessageValue, error) {
	if s.run != nil {
		return s.run(ctx, repo, args)
	}
	return "ok", nil, nil
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name    string
		toolset []Tool
		wantErr bool
	}{
		{
			name: "valid tool",
			toolset: []Tool{
				&stubTool{spec: Spec{Name: "a", Description: "does a"}},
			},
		},
		{
			name: "empty name",
			toolset: []Tool{
				&stubTool{spec: Spec{Description: "nameless"}},
			},
			wantErr: true,
		},
		{
			name: "empty description",
			toolset: []Tool{
				&stubTool{spec: Spec{Name: "undocumented"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate name",
			toolset: []Tool{
				&stubTool{spec: Spec{Name: "a", Description: "first"}},
				&stubTool{spec: Spec{Name: "a", Description: "second"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.toolset...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error: got %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultToolsRegister(t *testing.T) {
	registry, err := NewRegistry(DefaultTools()...)
	if err != nil {
		t.Fatalf("default toolset must register cleanly: %v", err)
	}

	want := []string{
		"get_current_time",
		"get_datasets",
		"get_dataset_columns",
		"statistics",
		"histogram",
		"correlation_heatmap",
		"correlation_scatter_plot",
		"modeling",
	}
	schemas := registry.Schemas()
	if len(schemas) != len(want) {
		t.Fatalf("schema count: got %d, want %d", len(schemas), len(want))
	}
	for i, name := range want {
		if schemas[i].Name != name {
			t.Errorf("schema %d: got %q, want %q", i, schemas[i].Name, name)
		}
	}
}

func TestSchemaRequiredSet(t *testing.T) {
	registry := MustNewRegistry(&stubTool{spec: Spec{
		Name:        "demo",
		Description: "demo tool",
		Params: []Param{
			{Name: "dataset_name", Type: "string", Description: "the dataset", Required: true},
			{Name: "bins", Type: "number", Description: "bin count", Default: 20},
		},
	}})

	schema := registry.Schemas()[0]
	if schema.InputSchema.Type != "object" {
		t.Errorf("schema type: got %q", schema.InputSchema.Type)
	}
	if len(schema.InputSchema.Required) != 1 || schema.InputSchema.Required[0] != "dataset_name" {
		t.Errorf("required: got %v", schema.InputSchema.Required)
	}
	prop, ok := schema.InputSchema.Properties["bins"].(map[string]any)
	if !ok {
		t.Fatalf("bins property missing: %v", schema.InputSchema.Properties)
	}
	if prop["default"] != 20 {
		t.Errorf("bins default: got %v", prop["default"])
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	registry := MustNewRegistry(DefaultTools()...)
	before := registry.Schemas()
	registry.Refresh()
	registry.Refresh()
	after := registry.Schemas()
	if len(before) != len(after) {
		t.Fatalf("schema count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Name != after[i].Name {
			t.Errorf("schema %d changed: %q -> %q", i, before[i].Name, after[i].Name)
		}
	}
}
