package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"github.com/uhatikus/UAIssistant/gemini"
	"github.com/uhatikus/UAIssistant/model"
)

// This file holds every conversion between UAIssistant's
// provider-agnostic types and provider-specific types: the registry's
// generic tool schemas rendered into each provider's envelope, and the
// stored conversation history projected into each wire format.

// ParseToolArguments parses a JSON arguments string into a map. A
// malformed string yields an empty map; the tool itself then reports
// the missing arguments back to the model as a tool-level failure.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return make(map[string]any)
	}
	return args
}

// ConvertToolsToOpenAI renders the generic schemas as OpenAI assistant
// tools. The code_interpreter tool is always included alongside the
// registered functions.
func ConvertToolsToOpenAI(schemas []mcptypes.Tool) []openai.AssistantToolUnionParam {
	result := make([]openai.AssistantToolUnionParam, 0, len(schemas)+1)
	result = append(result, openai.AssistantToolUnionParam{
		OfCodeInterpreter: &openai.CodeInterpreterToolParam{},
	})

	for _, tool := range schemas {
		params := openai.FunctionParameters{
			"type":       tool.InputSchema.Type,
			"properties": tool.InputSchema.Properties,
		}
		if len(tool.InputSchema.Required) > 0 {
			params["required"] = tool.InputSchema.Required
		}

		result = append(result, openai.AssistantToolUnionParam{
			OfFunction: &openai.FunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        tool.Name,
					Description: openai.String(tool.Description),
					Parameters:  params,
				},
			},
		})
	}
	return result
}

// ConvertToolsToAnthropic renders the generic schemas in Anthropic's
// tool format.
func ConvertToolsToAnthropic(schemas []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(schemas) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(schemas))
	for i, tool := range schemas {
		inputSchema := anthropic.ToolInputSchemaParam{
			Properties: tool.InputSchema.Properties,
		}
		if len(tool.InputSchema.Required) > 0 {
			inputSchema.Required = tool.InputSchema.Required
		}

		result[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Name)
		if tool.Description != "" {
			result[i].OfTool.Description = anthropic.String(tool.Description)
		}
	}
	return result
}

var geminiTypes = map[string]string{
	"string":  gemini.TypeString,
	"number":  gemini.TypeNumber,
	"integer": gemini.TypeInteger,
	"boolean": gemini.TypeBoolean,
	"array":   gemini.TypeArray,
	"object":  gemini.TypeObject,
}

// ConvertToolsToGemini renders the generic schemas as Gemini function
// declarations. Defaults are folded into the description since the
// schema dialect has no default field.
func ConvertToolsToGemini(schemas []mcptypes.Tool) []gemini.FunctionDeclaration {
	result := make([]gemini.FunctionDeclaration, 0, len(schemas))
	for _, tool := range schemas {
		properties := make(map[string]*gemini.Schema, len(tool.InputSchema.Properties))
		for name, raw := range tool.InputSchema.Properties {
			prop, _ := raw.(map[string]any)
			schema := &gemini.Schema{Type: gemini.TypeString}
			if t, ok := prop["type"].(string); ok {
				if mapped, known := geminiTypes[t]; known {
					schema.Type = mapped
				}
			}
			if desc, ok := prop["description"].(string); ok {
				schema.Description = desc
			}
			if def, ok := prop["default"]; ok {
				schema.Description = schema.Description + " Default value: " + formatDefault(def)
			}
			if schema.Type == gemini.TypeArray {
				schema.Items = &gemini.Schema{Type: gemini.TypeString}
			}
			properties[name] = schema
		}

		result = append(result, gemini.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &gemini.Schema{
				Type:       gemini.TypeObject,
				Properties: properties,
				Required:   tool.InputSchema.Required,
			},
		})
	}
	return result
}

func formatDefault(def any) string {
	data, err := json.Marshal(def)
	if err != nil {
		return ""
	}
	return string(data)
}

// ConvertToolsToOllama renders the generic schemas as Ollama API tools.
func ConvertToolsToOllama(schemas []mcptypes.Tool) []api.Tool {
	result := make([]api.Tool, 0, len(schemas))
	for _, tool := range schemas {
		params := api.ToolFunctionParameters{
			Type:       tool.InputSchema.Type,
			Required:   tool.InputSchema.Required,
			Properties: make(map[string]api.ToolProperty, len(tool.InputSchema.Properties)),
		}
		for name, raw := range tool.InputSchema.Properties {
			prop, _ := raw.(map[string]any)
			toolProp := api.ToolProperty{}
			if t, ok := prop["type"].(string); ok {
				toolProp.Type = api.PropertyType{t}
			}
			if desc, ok := prop["description"].(string); ok {
				toolProp.Description = desc
			}
			params.Properties[name] = toolProp
		}
		result = append(result, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}
	return result
}

// ReplayForAnthropic projects stored history into Anthropic's message
// array. Only plain-text turns replay; the store has already excluded
// internal tool-echo messages and ordered by creation time.
func ReplayForAnthropic(entities []model.MessageEntity) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(entities))
	for _, entity := range entities {
		text, ok := entity.Text()
		if !ok {
			continue
		}
		switch entity.Role {
		case model.RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return result
}

// ReplayForGemini projects stored history into Gemini contents.
// Assistant turns map to the provider's "model" role in this direction;
// the adapter maps "model" back to Assistant when storing replies.
func ReplayForGemini(entities []model.MessageEntity) []gemini.Content {
	result := make([]gemini.Content, 0, len(entities))
	for _, entity := range entities {
		text, ok := entity.Text()
		if !ok {
			continue
		}
		role := "user"
		if entity.Role == model.RoleAssistant {
			role = "model"
		}
		result = append(result, gemini.Content{
			Role:  role,
			Parts: []gemini.Part{{Text: text}},
		})
	}
	return result
}

// ReplayForOllama projects stored history into Ollama API messages.
func ReplayForOllama(entities []model.MessageEntity) []api.Message {
	result := make([]api.Message, 0, len(entities))
	for _, entity := range entities {
		text, ok := entity.Text()
		if !ok {
			continue
		}
		result = append(result, api.Message{
			Role:    string(entity.Role),
			Content: text,
		})
	}
	return result
}
