package ollama

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/promptwire/promptwire/llm"
)

// ToMessages converts neutral messages to Ollama's chat format. Tool
// specs, when provided, drive argument coercion for tool-use blocks:
// local models frequently emit numbers and booleans as strings, and
// Ollama rejects arguments that disagree with the declared schema.
func ToMessages(msgs []llm.Message, specs []llm.ToolSpec) []api.Message {
	var specMap map[string]llm.ToolSpec
	if len(specs) > 0 {
		specMap = make(map[string]llm.ToolSpec, len(specs))
		for _, spec := range specs {
			specMap[spec.Name] = spec
		}
	}

	result := make([]api.Message, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, toMessage(msg, specMap))
	}
	return result
}

func toMessage(msg llm.Message, specMap map[string]llm.ToolSpec) api.Message {
	var content string
	var toolCalls []api.ToolCall

	for _, block := range msg.Content {
		switch block.Type {
		case llm.ContentBlockTypeText:
			if content != "" {
				content += "\n"
			}
			content += block.Text

		case llm.ContentBlockTypeToolUse:
			if block.ToolUse == nil {
				continue
			}
			args := make(api.ToolCallFunctionArguments)
			for k, v := range block.ToolUse.Input {
				args[k] = v
			}
			if spec, ok := specMap[block.ToolUse.Name]; ok {
				coerceArguments(args, spec.Schema)
			}
			toolCalls = append(toolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      block.ToolUse.Name,
					Arguments: args,
				},
			})

		case llm.ContentBlockTypeToolResult:
			// Ollama has no tool-result role; results travel as plain
			// message content.
			if block.ToolResult == nil {
				continue
			}
			if content != "" {
				content += "\n"
			}
			content += block.ToolResult.Content
		}
	}

	return api.Message{
		Role:      string(msg.Role),
		Content:   content,
		ToolCalls: toolCalls,
	}
}

// coerceArguments rewrites argument values in place to match the
// declared parameter types.
func coerceArguments(args api.ToolCallFunctionArguments, schema llm.ToolSchema) {
	for name, value := range args {
		propSchema, ok := schema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		propType, _ := propSchema["type"].(string)
		if coerced, ok := coerceValue(value, propType); ok {
			args[name] = coerced
		}
	}
}

func coerceValue(v interface{}, targetType string) (interface{}, bool) {
	s, isString := v.(string)
	switch targetType {
	case "number", "integer":
		if isString {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	case "boolean":
		if isString {
			switch strings.ToLower(s) {
			case "true", "1", "yes":
				return true, true
			case "false", "0", "no":
				return false, true
			}
		}
	case "string":
		if !isString && v != nil {
			if _, isMap := v.(map[string]interface{}); isMap {
				return nil, false
			}
			if _, isSlice := v.([]interface{}); isSlice {
				return nil, false
			}
			return fmt.Sprintf("%v", v), true
		}
	}
	return nil, false
}

// ToTools converts tool specs to Ollama's function declarations.
func ToTools(specs []llm.ToolSpec) []api.Tool {
	result := make([]api.Tool, 0, len(specs))
	for i := range specs {
		spec := &specs[i]
		properties := make(map[string]api.ToolProperty, len(spec.Schema.Properties))
		for name, raw := range spec.Schema.Properties {
			prop := api.ToolProperty{Type: []string{"string"}}
			if propMap, ok := raw.(map[string]interface{}); ok {
				if propType, ok := propMap["type"].(string); ok {
					prop.Type = []string{propType}
				}
				if desc, ok := propMap["description"].(string); ok {
					prop.Description = desc
				}
				if enum, ok := propMap["enum"].([]interface{}); ok {
					prop.Enum = enum
				}
			}
			properties[name] = prop
		}

		result = append(result, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters: api.ToolFunctionParameters{
					Type:       spec.Schema.Type,
					Properties: properties,
					Required:   spec.Schema.Required,
				},
			},
		})
	}
	return result
}

// FromToolCall converts an Ollama tool call to a neutral tool-use
// block. Ollama assigns no call IDs, so one is synthesized from the
// function name and position.
func FromToolCall(toolCall api.ToolCall, index int) *llm.ToolUseBlock {
	input := make(map[string]interface{})
	for k, v := range toolCall.Function.Arguments {
		input[k] = v
	}
	return &llm.ToolUseBlock{
		ID:    fmt.Sprintf("call_%s_%d", toolCall.Function.Name, index),
		Name:  toolCall.Function.Name,
		Input: input,
	}
}

// fromChatResponse converts a final chat response into neutral blocks.
func fromChatResponse(resp api.ChatResponse) []llm.ContentBlock {
	content := make([]llm.ContentBlock, 0)
	if resp.Message.Content != "" {
		content = append(content, llm.ContentBlock{
			Type: llm.ContentBlockTypeText,
			Text: resp.Message.Content,
		})
	}
	for i, toolCall := range resp.Message.ToolCalls {
		content = append(content, llm.ContentBlock{
			Type:    llm.ContentBlockTypeToolUse,
			ToolUse: FromToolCall(toolCall, i),
		})
	}
	return content
}
