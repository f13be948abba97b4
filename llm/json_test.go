package llm

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestTextMessageRoundTrip(t *testing.T) {
	msg := NewTextMessage(RoleUser, "Hello")
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// Single text block uses the string shorthand.
	if !strings.Contains(string(data), `"content":"Hello"`) {
		t.Errorf("Expected string shorthand content, got %s", data)
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(msg, back) {
		t.Errorf("Round trip mismatch: %+v vs %+v", msg, back)
	}
}

func TestMessageAcceptsArrayContent(t *testing.T) {
	data := []byte(`{"role":"user","content":[{"type":"text","text":"Hello"}]}`)
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := NewTextMessage(RoleUser, "Hello")
	if !reflect.DeepEqual(msg, want) {
		t.Errorf("Array form parsed to %+v, want %+v", msg, want)
	}
}

func TestMixedMessageRoundTrip(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Content: []ContentBlock{
			{Type: ContentBlockTypeText, Text: "Let me check."},
			{Type: ContentBlockTypeToolUse, ToolUse: &ToolUseBlock{
				ID:    "toolu_01",
				Name:  "bash",
				Input: map[string]interface{}{"command": "echo 4"},
			}},
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"type":"tool_use"`) {
		t.Errorf("Expected tool_use discriminator, got %s", data)
	}
	if !strings.Contains(string(data), `"id":"toolu_01"`) {
		t.Errorf("Expected byte-identical tool use ID in output, got %s", data)
	}

	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(msg, back) {
		t.Errorf("Round trip mismatch: %+v vs %+v", msg, back)
	}
}

func TestToolResultSerialization(t *testing.T) {
	block := ContentBlock{
		Type:       ContentBlockTypeToolResult,
		ToolResult: &ToolResultBlock{ID: "toolu_01", Content: "4\n"},
	}
	data, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	// is_error is omitted when false.
	if strings.Contains(string(data), "is_error") {
		t.Errorf("Expected is_error omitted, got %s", data)
	}

	block.ToolResult.IsError = true
	data, err = json.Marshal(block)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"is_error":true`) {
		t.Errorf("Expected is_error present, got %s", data)
	}
}

func TestUnknownBlockTypesDropped(t *testing.T) {
	data := []byte(`{"role":"assistant","content":[
		{"type":"text","text":"hi"},
		{"type":"thinking","thinking":"..."},
		{"type":"text","text":"bye"}
	]}`)
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("Expected unknown block dropped, got %d blocks", len(msg.Content))
	}
	if msg.Content[1].Text != "bye" {
		t.Errorf("Expected remaining blocks in order, got %+v", msg.Content)
	}
}

func TestEmptyTextBlockIsLegal(t *testing.T) {
	msg := NewTextMessage(RoleAssistant, "")
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(msg, back) {
		t.Errorf("Round trip mismatch for empty text: %+v vs %+v", msg, back)
	}
}

func TestBlockDiscriminatorBijection(t *testing.T) {
	blocks := []ContentBlock{
		{Type: ContentBlockTypeText, Text: "x"},
		{Type: ContentBlockTypeToolUse, ToolUse: &ToolUseBlock{ID: "a", Name: "n"}},
		{Type: ContentBlockTypeToolResult, ToolResult: &ToolResultBlock{ID: "a", Content: "c"}},
	}
	for _, b := range blocks {
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if envelope.Type != string(b.Type) {
			t.Errorf("Discriminator %q does not match block type %q", envelope.Type, b.Type)
		}
	}
}

func TestMarshalUnknownBlockFails(t *testing.T) {
	b := ContentBlock{Type: ContentBlockTypeImage}
	if _, err := json.Marshal(b); err == nil {
		t.Error("Expected serialization error for reserved block type")
	}
}
