package anthropic

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// stream implements llm.Stream on top of the SDK's SSE stream. Events
// are produced by a reader goroutine and consumed through the pull
// interface; a condition variable bridges the two.
type stream struct {
	ctx     context.Context
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	cond    *sync.Cond
	err     error
	done    bool
	started bool
	logger  zerolog.Logger
}

func newStream(ctx context.Context, s *ssestream.Stream[anthropic.MessageStreamEventUnion], logger zerolog.Logger) *stream {
	as := &stream{
		ctx:     ctx,
		stream:  s,
		events:  make([]*llm.StreamEvent, 0),
		current: -1,
		logger:  logger,
	}
	as.cond = sync.NewCond(&as.mu)
	return as
}

// Next advances to the next event in the stream.
func (s *stream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		go s.run()
	}

	s.current++
	for s.current >= len(s.events) && !s.done && s.err == nil {
		s.cond.Wait()
	}

	if s.err != nil {
		return false
	}
	return s.current < len(s.events)
}

// Event returns the current event.
func (s *stream) Event() *llm.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.events) {
		return nil
	}
	return s.events[s.current]
}

// Err returns any error that occurred during streaming.
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	s.cond.Broadcast()
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

// emit appends an event and wakes the consumer. Caller holds s.mu.
func (s *stream) emit(event *llm.StreamEvent) {
	s.events = append(s.events, event)
	s.cond.Broadcast()
}

// run drains the SSE stream and translates SDK events into neutral
// stream events. Protocol failures end the stream with a synthetic stop
// carrying StopReasonError instead of escaping the event loop.
func (s *stream) run() {
	s.mu.Lock()
	s.emit(&llm.StreamEvent{Type: llm.StreamEventTypeStart})
	s.mu.Unlock()

	var currentToolCall *llm.ToolUseBlock
	var toolInputBuilder strings.Builder
	var usage *llm.Usage
	stopReason := llm.StopReasonEndTurn

	for s.stream.Next() {
		event := s.stream.Current()

		s.mu.Lock()
		if s.done {
			s.mu.Unlock()
			return
		}

		switch evt := event.AsAny().(type) {
		case anthropic.MessageStartEvent:
			// Start already emitted.

		case anthropic.ContentBlockStartEvent:
			if block, ok := evt.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
				currentToolCall = &llm.ToolUseBlock{
					ID:    block.ID,
					Name:  block.Name,
					Input: make(map[string]interface{}),
				}
				toolInputBuilder.Reset()
				s.emit(&llm.StreamEvent{
					Type: llm.StreamEventTypeContentBlock,
					Delta: &llm.StreamDelta{
						Type:    llm.StreamDeltaTypeToolUse,
						ToolUse: currentToolCall,
					},
				})
			}

		case anthropic.ContentBlockDeltaEvent:
			switch d := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if d.Text != "" {
					s.emit(&llm.StreamEvent{
						Type: llm.StreamEventTypeContentDelta,
						Delta: &llm.StreamDelta{
							Type: llm.StreamDeltaTypeText,
							Text: d.Text,
						},
					})
				}
			case anthropic.InputJSONDelta:
				if currentToolCall != nil && d.PartialJSON != "" {
					toolInputBuilder.WriteString(d.PartialJSON)
					s.emit(&llm.StreamEvent{
						Type: llm.StreamEventTypeContentDelta,
						Delta: &llm.StreamDelta{
							Type:      llm.StreamDeltaTypeToolInput,
							ToolInput: d.PartialJSON,
						},
					})
				}
			}

		case anthropic.ContentBlockStopEvent:
			if currentToolCall != nil {
				currentToolCall.Input = parseToolInput(toolInputBuilder.String())
				toolInputBuilder.Reset()
				currentToolCall = nil
			}

		case anthropic.MessageDeltaEvent:
			usage = &llm.Usage{
				InputTokens:  evt.Usage.InputTokens,
				OutputTokens: evt.Usage.OutputTokens,
			}
			if evt.Delta.StopReason != "" {
				stopReason = llm.StopReasonFromWire(string(evt.Delta.StopReason))
			}

		case anthropic.MessageStopEvent:
			if currentToolCall != nil {
				currentToolCall.Input = parseToolInput(toolInputBuilder.String())
				currentToolCall = nil
			}
			s.emit(&llm.StreamEvent{
				Type:  llm.StreamEventTypeMessageDelta,
				Usage: usage,
			})
			s.emit(&llm.StreamEvent{
				Type:       llm.StreamEventTypeStop,
				Usage:      usage,
				StopReason: stopReason,
				Done:       true,
			})
			s.done = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	if err := s.stream.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("Anthropic stream ended with protocol error")
		s.emit(&llm.StreamEvent{
			Type:       llm.StreamEventTypeStop,
			Usage:      usage,
			StopReason: llm.StopReasonError,
			Done:       true,
		})
	} else {
		s.emit(&llm.StreamEvent{
			Type:       llm.StreamEventTypeStop,
			Usage:      usage,
			StopReason: stopReason,
			Done:       true,
		})
	}
	s.done = true
	s.cond.Broadcast()
}

func parseToolInput(raw string) map[string]interface{} {
	input := make(map[string]interface{})
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			input = make(map[string]interface{})
		}
	}
	return input
}

var _ llm.Stream = (*stream)(nil)
