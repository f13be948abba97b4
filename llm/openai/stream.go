package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/promptwire/promptwire/llm"
)

// stream implements llm.Stream over a chat-completions SSE stream.
// The underlying stream is drained on first Next; events are then
// replayed from the buffer.
type stream struct {
	ctx     context.Context
	inner   *openai.ChatCompletionStream
	logger  zerolog.Logger
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	err     error
	started bool
	closed  bool
}

func newStream(ctx context.Context, inner *openai.ChatCompletionStream, logger zerolog.Logger) *stream {
	return &stream{
		ctx:     ctx,
		inner:   inner,
		logger:  logger,
		current: -1,
	}
}

// Next advances to the next event in the stream.
func (s *stream) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		s.started = true
		s.drain()
	}

	s.current++
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

// Err returns any error that terminated the stream.
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the stream and releases resources.
func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.inner != nil {
		return s.inner.Close()
	}
	return nil
}

func (s *stream) drain() {
	s.events = append(s.events, &llm.StreamEvent{Type: llm.StreamEventTypeStart})

	// Tool calls are keyed by the delta's index: parallel calls may
	// interleave argument fragments, and fragments after the first
	// chunk carry only the index, not the ID.
	toolCalls := make(map[int]*llm.ToolUseBlock)
	toolInputs := make(map[int]*strings.Builder)
	lastIndex := 0
	var usage *llm.Usage
	stopReason := llm.StopReasonNone
	stopped := false

	for {
		response, err := s.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctxErr := llm.FromContext(s.ctx); ctxErr != nil {
				s.err = ctxErr
				return
			}
			// Protocol failures end the event sequence rather than
			// escaping it: emit a terminal stop carrying an error
			// stop reason so consumers see a well-formed stream.
			s.logger.Warn().Err(err).Msg("stream terminated by protocol error")
			s.finishToolCalls(toolCalls, toolInputs)
			s.events = append(s.events, &llm.StreamEvent{
				Type:       llm.StreamEventTypeStop,
				Usage:      usage,
				StopReason: llm.StopReasonError,
				Done:       true,
			})
			return
		}

		// The usage-bearing final chunk arrives with an empty choice list.
		if response.Usage != nil {
			usage = &llm.Usage{
				InputTokens:  int64(response.Usage.PromptTokens),
				OutputTokens: int64(response.Usage.CompletionTokens),
			}
		}
		if len(response.Choices) == 0 {
			continue
		}
		choice := response.Choices[0]

		if choice.Delta.Content != "" {
			s.events = append(s.events, &llm.StreamEvent{
				Type: llm.StreamEventTypeContentDelta,
				Delta: &llm.StreamDelta{
					Type: llm.StreamDeltaTypeText,
					Text: choice.Delta.Content,
				},
			})
		}

		for _, toolCallDelta := range choice.Delta.ToolCalls {
			index := lastIndex
			if toolCallDelta.Index != nil {
				index = *toolCallDelta.Index
			}
			lastIndex = index

			// A non-empty ID starts the call at this index; argument
			// fragments arrive afterwards with an empty ID.
			if toolCallDelta.ID != "" {
				if _, ok := toolCalls[index]; !ok {
					block := &llm.ToolUseBlock{
						ID:    toolCallDelta.ID,
						Name:  toolCallDelta.Function.Name,
						Input: make(map[string]interface{}),
					}
					toolCalls[index] = block
					toolInputs[index] = &strings.Builder{}
					s.events = append(s.events, &llm.StreamEvent{
						Type: llm.StreamEventTypeContentBlock,
						Delta: &llm.StreamDelta{
							Type:    llm.StreamDeltaTypeToolUse,
							ToolUse: block,
						},
					})
				}
			}

			if toolCallDelta.Function.Arguments != "" {
				if input, ok := toolInputs[index]; ok {
					input.WriteString(toolCallDelta.Function.Arguments)
				}
				s.events = append(s.events, &llm.StreamEvent{
					Type: llm.StreamEventTypeContentDelta,
					Delta: &llm.StreamDelta{
						Type:      llm.StreamDeltaTypeToolInput,
						ToolInput: toolCallDelta.Function.Arguments,
					},
				})
			}
		}

		if choice.FinishReason != "" {
			stopReason = llm.StopReasonFromWire(string(choice.FinishReason))
			stopped = true
		}
	}

	s.finishToolCalls(toolCalls, toolInputs)
	if !stopped && stopReason == llm.StopReasonNone {
		stopReason = llm.StopReasonEndTurn
	}

	s.events = append(s.events, &llm.StreamEvent{
		Type:  llm.StreamEventTypeMessageDelta,
		Usage: usage,
	}, &llm.StreamEvent{
		Type:       llm.StreamEventTypeStop,
		Usage:      usage,
		StopReason: stopReason,
		Done:       true,
	})
}

// finishToolCalls parses each call's accumulated argument fragments
// into its tool-use block. The blocks were already emitted by pointer,
// so consumers observe the completed inputs.
func (s *stream) finishToolCalls(toolCalls map[int]*llm.ToolUseBlock, toolInputs map[int]*strings.Builder) {
	for index, toolCall := range toolCalls {
		input := toolInputs[index]
		parsed := make(map[string]interface{})
		if input != nil && input.Len() > 0 {
			if err := json.Unmarshal([]byte(input.String()), &parsed); err != nil {
				parsed = make(map[string]interface{})
			}
		}
		toolCall.Input = parsed
	}
}
