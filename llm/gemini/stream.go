package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// maxSSELineSize bounds a single data: line.
const maxSSELineSize = 1 << 20

// stream implements llm.Stream over streamGenerateContent's SSE
// framing. Each "data:" line carries one generateResponse chunk. The
// body is drained on first Next; events replay from the buffer.
type stream struct {
	ctx     context.Context
	body    io.ReadCloser
	logger  zerolog.Logger
	events  []*llm.StreamEvent
	current int
	mu      sync.Mutex
	err     error
	started bool
	closed  bool
}

func newStream(ctx context.Context, body io.ReadCloser, logger zerolog.Logger) *stream {
	return &stream{
		ctx:     ctx,
		body:    body,
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
	return s.body.Close()
}

func (s *stream) drain() {
	defer s.body.Close()

	s.events = append(s.events, &llm.StreamEvent{Type: llm.StreamEventTypeStart})

	var usage *llm.Usage
	stopReason := llm.StopReasonNone
	sawToolUse := false

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// A malformed chunk terminates the event sequence with an
			// error stop reason rather than escaping the loop.
			s.logger.Warn().Err(err).Msg("stream terminated by malformed chunk")
			s.events = append(s.events, &llm.StreamEvent{
				Type:       llm.StreamEventTypeStop,
				Usage:      usage,
				StopReason: llm.StopReasonError,
				Done:       true,
			})
			return
		}

		if chunk.UsageMetadata != nil {
			usage = &llm.Usage{
				InputTokens:  chunk.UsageMetadata.PromptTokenCount,
				OutputTokens: chunk.UsageMetadata.CandidatesTokenCount,
			}
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		cand := chunk.Candidates[0]

		for _, block := range fromParts(cand.Content.Parts) {
			switch block.Type {
			case llm.ContentBlockTypeText:
				s.events = append(s.events, &llm.StreamEvent{
					Type: llm.StreamEventTypeContentDelta,
					Delta: &llm.StreamDelta{
						Type: llm.StreamDeltaTypeText,
						Text: block.Text,
					},
				})
			case llm.ContentBlockTypeToolUse:
				sawToolUse = true
				s.events = append(s.events, &llm.StreamEvent{
					Type: llm.StreamEventTypeContentBlock,
					Delta: &llm.StreamDelta{
						Type:    llm.StreamDeltaTypeToolUse,
						ToolUse: block.ToolUse,
					},
				})
			}
		}

		if cand.FinishReason != "" {
			stopReason = llm.StopReasonFromWire(cand.FinishReason)
		}
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := llm.FromContext(s.ctx); ctxErr != nil {
			s.err = ctxErr
			return
		}
		s.logger.Warn().Err(err).Msg("stream terminated by read error")
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
