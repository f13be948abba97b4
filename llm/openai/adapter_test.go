package openai

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/promptwire/promptwire/llm"
)

func TestToChatMessagesTextAndToolUse(t *testing.T) {
	msgs := []llm.Message{
		llm.NewTextMessage(llm.RoleUser, "run ls"),
		{
			Role: llm.RoleAssistant,
			Content: []llm.ContentBlock{
				{Type: llm.ContentBlockTypeText, Text: "Running it."},
				{
					Type: llm.ContentBlockTypeToolUse,
					ToolUse: &llm.ToolUseBlock{
						ID:    "call_1",
						Name:  "bash",
						Input: map[string]interface{}{"command": "ls"},
					},
				},
			},
		},
	}

	chat := ToChatMessages(msgs)
	if len(chat) != 2 {
		t.Fatalf("expected 2 chat messages, got %d", len(chat))
	}
	if chat[0].Role != openai.ChatMessageRoleUser || chat[0].Content != "run ls" {
		t.Errorf("user message = %+v", chat[0])
	}

	assistant := chat[1]
	if assistant.Role != openai.ChatMessageRoleAssistant {
		t.Errorf("role = %q", assistant.Role)
	}
	if assistant.Content != "Running it." {
		t.Errorf("content = %q", assistant.Content)
	}
	if len(assistant.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(assistant.ToolCalls))
	}
	call := assistant.ToolCalls[0]
	if call.ID != "call_1" || call.Function.Name != "bash" {
		t.Errorf("tool call = %+v", call)
	}
	if call.Function.Arguments != `{"command":"ls"}` {
		t.Errorf("arguments = %q", call.Function.Arguments)
	}
}

func TestToChatMessagesToolResultsExpand(t *testing.T) {
	msgs := []llm.Message{
		llm.NewToolResultMessage([]llm.ToolResultBlock{
			{ID: "call_1", Content: "file.go\n"},
			{ID: "call_2", Content: "denied", IsError: true},
		}),
	}

	chat := ToChatMessages(msgs)
	if len(chat) != 2 {
		t.Fatalf("expected 2 tool messages, got %d", len(chat))
	}
	for i, want := range []struct {
		id      string
		content string
	}{
		{"call_1", "file.go\n"},
		{"call_2", "denied"},
	} {
		if chat[i].Role != openai.ChatMessageRoleTool {
			t.Errorf("message %d role = %q, want tool", i, chat[i].Role)
		}
		if chat[i].ToolCallID != want.id {
			t.Errorf("message %d ToolCallID = %q, want %q", i, chat[i].ToolCallID, want.id)
		}
		if chat[i].Content != want.content {
			t.Errorf("message %d content = %q", i, chat[i].Content)
		}
	}
}

func TestToToolsWrapsFunctionDefinitions(t *testing.T) {
	specs := []llm.ToolSpec{
		llm.NewToolSpec("grep", "Search file contents",
			llm.ToolParam{Name: "pattern", Type: "string", Required: true},
		),
	}

	tools := ToTools(specs)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	if tools[0].Type != openai.ToolTypeFunction {
		t.Errorf("type = %q", tools[0].Type)
	}
	fn := tools[0].Function
	if fn.Name != "grep" || fn.Description != "Search file contents" {
		t.Errorf("function = %+v", fn)
	}
	params, ok := fn.Parameters.(map[string]interface{})
	if !ok {
		t.Fatalf("parameters type = %T", fn.Parameters)
	}
	if params["type"] != "object" {
		t.Errorf("parameters = %v", params)
	}
}

func TestFromToolCallArguments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]interface{}
	}{
		{"object", `{"path":"main.go"}`, map[string]interface{}{"path": "main.go"}},
		{"double encoded", `"{\"path\":\"main.go\"}"`, map[string]interface{}{"path": "main.go"}},
		{"empty", "", map[string]interface{}{}},
		{"garbage", `not json at all`, map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := FromToolCall(openai.ToolCall{
				ID:       "call_x",
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: "read", Arguments: tt.raw},
			})
			if block.ID != "call_x" || block.Name != "read" {
				t.Errorf("block = %+v", block)
			}
			if len(block.Input) != len(tt.want) {
				t.Fatalf("Input = %v, want %v", block.Input, tt.want)
			}
			for k, v := range tt.want {
				if block.Input[k] != v {
					t.Errorf("Input[%q] = %v, want %v", k, block.Input[k], v)
				}
			}
		})
	}
}

func TestFromChoice(t *testing.T) {
	choice := openai.ChatCompletionChoice{
		Message: openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: "Checking.",
			ToolCalls: []openai.ToolCall{{
				ID:       "call_7",
				Type:     openai.ToolTypeFunction,
				Function: openai.FunctionCall{Name: "ls", Arguments: `{"path":"."}`},
			}},
		},
	}

	blocks := FromChoice(choice)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Type != llm.ContentBlockTypeText || blocks[0].Text != "Checking." {
		t.Errorf("text block = %+v", blocks[0])
	}
	if blocks[1].Type != llm.ContentBlockTypeToolUse || blocks[1].ToolUse.Name != "ls" {
		t.Errorf("tool block = %+v", blocks[1])
	}
}
