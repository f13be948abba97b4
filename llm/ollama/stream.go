package ollama

import (
	"context"
	"sync"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// stream implements llm.Stream over Ollama's chunked chat responses.
// The Chat call runs to completion on first Next; events replay from
// the buffer.
type stream struct {
	ctx     context.Context
	client  *api.Client
	req     *api.ChatRequest
	logger  zerolog.Logger
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	err     error
	started bool
}

func newStream(ctx context.Context, client *api.Client, req *api.ChatRequest, logger zerolog.Logger) *stream {
	return &stream{
		ctx:     ctx,
		client:  client,
		req:     req,
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

// Close is a no-op; the Chat call owns the connection.
func (s *stream) Close() error {
	return nil
}

func (s *stream) drain() {
	s.events = append(s.events, &llm.StreamEvent{Type: llm.StreamEventTypeStart})

	var usage *llm.Usage
	stopReason := llm.StopReasonNone
	sawToolUse := false
	toolIndex := 0

	err := s.client.Chat(s.ctx, s.req, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			s.events = append(s.events, &llm.StreamEvent{
				Type: llm.StreamEventTypeContentDelta,
				Delta: &llm.StreamDelta{
					Type: llm.StreamDeltaTypeText,
					Text: resp.Message.Content,
				},
			})
		}

		for _, toolCall := range resp.Message.ToolCalls {
			sawToolUse = true
			s.events = append(s.events, &llm.StreamEvent{
				Type: llm.StreamEventTypeContentBlock,
				Delta: &llm.StreamDelta{
					Type:    llm.StreamDeltaTypeToolUse,
					ToolUse: FromToolCall(toolCall, toolIndex),
				},
			})
			toolIndex++
		}

		if resp.Done {
			usage = &llm.Usage{
				InputTokens:  int64(resp.PromptEvalCount),
				OutputTokens: int64(resp.EvalCount),
			}
			stopReason = llm.StopReasonFromWire(resp.DoneReason)
			if stopReason == llm.StopReasonNone {
				stopReason = llm.StopReasonEndTurn
			}
		}
		return nil
	})
	if err != nil {
		if ctxErr := llm.FromContext(s.ctx); ctxErr != nil {
			s.err = ctxErr
			return
		}
		s.logger.Warn().Err(err).Msg("stream terminated by chat error")
		s.events = append(s.events, &llm.StreamEvent{
			Type:       llm.StreamEventTypeStop,
			Usage:      usage,
			StopReason: llm.StopReasonError,
			Done:       true,
		})
		return
	}

	if sawToolUse {
		stopReason = llm.StopReasonToolUse
	} else if stopReason == llm.StopReasonNone {
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
