package gemini

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

func collectEvents(t *testing.T, s llm.Stream) []*llm.StreamEvent {
	t.Helper()

	var events []*llm.StreamEvent
	for s.Next() {
		events = append(events, s.Event())
	}
	return events
}

func TestStreamTextDeltas(t *testing.T) {
	body := strings.Join([]string{
		`data: {"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"}]}}]}`,
		``,
		`data: {"candidates":[{"content":{"role":"model","parts":[{"text":"lo"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":2}}`,
		``,
	}, "\n")

	s := newStream(context.Background(), io.NopCloser(strings.NewReader(body)), zerolog.Nop())
	events := collectEvents(t, s)
	if err := s.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[0].Type != llm.StreamEventTypeStart {
		t.Errorf("first event = %q, want start", events[0].Type)
	}

	var text strings.Builder
	for _, ev := range events {
		if ev.Type == llm.StreamEventTypeContentDelta {
			text.WriteString(ev.Delta.Text)
		}
	}
	if text.String() != "Hello" {
		t.Errorf("accumulated text = %q", text.String())
	}

	last := events[len(events)-1]
	if last.Type != llm.StreamEventTypeStop || !last.Done {
		t.Errorf("terminal event = %+v", last)
	}
	if last.StopReason != llm.StopReasonEndTurn {
		t.Errorf("StopReason = %q", last.StopReason)
	}
	if last.Usage == nil || last.Usage.InputTokens != 5 || last.Usage.OutputTokens != 2 {
		t.Errorf("Usage = %+v", last.Usage)
	}
}

func TestStreamFunctionCall(t *testing.T) {
	body := `data: {"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"glob","args":{"pattern":"*.go"}}}]},"finishReason":"STOP"}]}` + "\n"

	s := newStream(context.Background(), io.NopCloser(strings.NewReader(body)), zerolog.Nop())
	events := collectEvents(t, s)

	var toolUse *llm.ToolUseBlock
	for _, ev := range events {
		if ev.Type == llm.StreamEventTypeContentBlock {
			toolUse = ev.Delta.ToolUse
		}
	}
	if toolUse == nil {
		t.Fatal("no tool use event emitted")
	}
	if toolUse.Name != "glob" || toolUse.Input["pattern"] != "*.go" {
		t.Errorf("tool use = %+v", toolUse)
	}

	last := events[len(events)-1]
	if last.StopReason != llm.StopReasonToolUse {
		t.Errorf("StopReason = %q, want tool_use", last.StopReason)
	}
}

func TestStreamMalformedChunkBecomesErrorStop(t *testing.T) {
	body := strings.Join([]string{
		`data: {"candidates":[{"content":{"parts":[{"text":"partial"}]}}]}`,
		`data: {this is not json`,
	}, "\n")

	s := newStream(context.Background(), io.NopCloser(strings.NewReader(body)), zerolog.Nop())
	events := collectEvents(t, s)
	if err := s.Err(); err != nil {
		t.Fatalf("a malformed chunk must not surface as a stream error, got %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Delta == nil || events[1].Delta.Text != "partial" {
		t.Errorf("buffered delta lost: %+v", events[1])
	}
	last := events[2]
	if last.Type != llm.StreamEventTypeStop || last.StopReason != llm.StopReasonError || !last.Done {
		t.Errorf("terminal event = %+v", last)
	}
}

func TestStreamIgnoresDoneMarkerAndBlankLines(t *testing.T) {
	body := strings.Join([]string{
		``,
		`data:`,
		`data: [DONE]`,
		`data: {"candidates":[{"content":{"parts":[{"text":"ok"}]},"finishReason":"STOP"}]}`,
	}, "\n")

	s := newStream(context.Background(), io.NopCloser(strings.NewReader(body)), zerolog.Nop())
	events := collectEvents(t, s)

	deltas := 0
	for _, ev := range events {
		if ev.Type == llm.StreamEventTypeContentDelta {
			deltas++
		}
	}
	if deltas != 1 {
		t.Errorf("expected 1 delta, got %d", deltas)
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	s := newStream(context.Background(), io.NopCloser(strings.NewReader("")), zerolog.Nop())
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
