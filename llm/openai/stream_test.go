package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

func sseServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStreamInterleavedToolCallFragments(t *testing.T) {
	chunks := []string{
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_a","type":"function","function":{"name":"read","arguments":""}}]}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_b","type":"function","function":{"name":"ls","arguments":""}}]}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"path\":"}}]}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"function":{"arguments":"{\"path\":\".\"}"}}]}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"main.go\"}"}}]}}]}`,
		`{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	}
	server := sseServer(t, chunks)

	client, err := NewClient("test-key", server.URL, "gpt-4o", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	stream, err := client.Stream(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "inspect")},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var toolUses []*llm.ToolUseBlock
	var last *llm.StreamEvent
	for stream.Next() {
		event := stream.Event()
		if event.Type == llm.StreamEventTypeContentBlock {
			toolUses = append(toolUses, event.Delta.ToolUse)
		}
		last = event
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	if len(toolUses) != 2 {
		t.Fatalf("expected 2 tool uses, got %d", len(toolUses))
	}
	// Fragments interleaved across indexes must land on their own call.
	if toolUses[0].ID != "call_a" || toolUses[0].Input["path"] != "main.go" {
		t.Errorf("call_a = %+v", toolUses[0])
	}
	if toolUses[1].ID != "call_b" || toolUses[1].Input["path"] != "." {
		t.Errorf("call_b = %+v", toolUses[1])
	}

	if last == nil || last.Type != llm.StreamEventTypeStop || !last.Done {
		t.Fatalf("terminal event = %+v", last)
	}
	if last.StopReason != llm.StopReasonToolUse {
		t.Errorf("StopReason = %q, want tool_use", last.StopReason)
	}
}

func TestStreamTextAndUsage(t *testing.T) {
	chunks := []string{
		`{"id":"c2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"Hel"}}]}`,
		`{"id":"c2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"lo"}}]}`,
		`{"id":"c2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`{"id":"c2","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":7,"completion_tokens":2}}`,
	}
	server := sseServer(t, chunks)

	client, err := NewClient("test-key", server.URL, "gpt-4o", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	stream, err := client.Stream(context.Background(), &llm.Request{
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var text string
	var last *llm.StreamEvent
	for stream.Next() {
		event := stream.Event()
		if event.Type == llm.StreamEventTypeContentDelta && event.Delta.Type == llm.StreamDeltaTypeText {
			text += event.Delta.Text
		}
		last = event
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	if text != "Hello" {
		t.Errorf("text = %q", text)
	}
	if last.StopReason != llm.StopReasonEndTurn {
		t.Errorf("StopReason = %q", last.StopReason)
	}
	if last.Usage == nil || last.Usage.InputTokens != 7 || last.Usage.OutputTokens != 2 {
		t.Errorf("Usage = %+v", last.Usage)
	}
}
