package openai

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"

	"github.com/promptwire/promptwire/llm"
)

// ToChatMessages converts llm.Messages to the chat-completions dialect.
// A message holding tool results expands into one role "tool" message
// per result, each carrying its tool_call_id; text and tool-use blocks
// of one message stay together.
func ToChatMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, toChatMessages(msg)...)
	}
	return result
}

func toChatMessages(msg llm.Message) []openai.ChatCompletionMessage {
	var role string
	switch msg.Role {
	case llm.RoleAssistant:
		role = openai.ChatMessageRoleAssistant
	case llm.RoleSystem:
		role = openai.ChatMessageRoleSystem
	case llm.RoleTool:
		role = openai.ChatMessageRoleTool
	default:
		role = openai.ChatMessageRoleUser
	}

	var out []openai.ChatCompletionMessage
	var content string
	var toolCalls []openai.ToolCall

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
			argsJSON, err := json.Marshal(block.ToolUse.Input)
			if err != nil {
				argsJSON = []byte("{}")
			}
			toolCalls = append(toolCalls, openai.ToolCall{
				ID:   block.ToolUse.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      block.ToolUse.Name,
					Arguments: string(argsJSON),
				},
			})

		case llm.ContentBlockTypeToolResult:
			if block.ToolResult == nil {
				continue
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: block.ToolResult.ID,
				Content:    block.ToolResult.Content,
			})
		}
	}

	if content != "" || len(toolCalls) > 0 || len(out) == 0 {
		main := openai.ChatCompletionMessage{
			Role:      role,
			Content:   content,
			ToolCalls: toolCalls,
		}
		out = append([]openai.ChatCompletionMessage{main}, out...)
	}
	return out
}

// ToTools converts llm.ToolSpecs to the chat-completions function
// wrapper: {"type":"function","function":{name, description, parameters}}.
func ToTools(specs []llm.ToolSpec) []openai.Tool {
	result := make([]openai.Tool, 0, len(specs))
	for i := range specs {
		spec := &specs[i]
		function := openai.FunctionDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Schema.SchemaMap(),
		}
		result = append(result, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &function,
		})
	}
	return result
}

// FromToolCall converts a chat-completions tool call into an
// llm.ToolUseBlock. Arguments usually arrive as a JSON-encoded string;
// some models emit a structured object instead, so both are accepted.
func FromToolCall(toolCall openai.ToolCall) *llm.ToolUseBlock {
	input := make(map[string]interface{})
	raw := toolCall.Function.Arguments
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			// Some backends double-encode: a JSON string containing JSON.
			var nested string
			if err2 := json.Unmarshal([]byte(raw), &nested); err2 == nil {
				if err3 := json.Unmarshal([]byte(nested), &input); err3 != nil {
					input = make(map[string]interface{})
				}
			} else {
				input = make(map[string]interface{})
			}
		}
	}

	return &llm.ToolUseBlock{
		ID:    toolCall.ID,
		Name:  toolCall.Function.Name,
		Input: input,
	}
}

// FromChoice converts a response choice into neutral content blocks.
func FromChoice(choice openai.ChatCompletionChoice) []llm.ContentBlock {
	content := make([]llm.ContentBlock, 0)
	if choice.Message.Content != "" {
		content = append(content, llm.ContentBlock{
			Type: llm.ContentBlockTypeText,
			Text: choice.Message.Content,
		})
	}
	for _, toolCall := range choice.Message.ToolCalls {
		content = append(content, llm.ContentBlock{
			Type:    llm.ContentBlockTypeToolUse,
			ToolUse: FromToolCall(toolCall),
		})
	}
	return content
}
