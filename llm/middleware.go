package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LoggingMiddleware logs requests, responses, and errors. API keys never
// pass through Request, so nothing sensitive reaches the log.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a middleware that logs request/response
// metadata at debug level and errors at warn level.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger.With().Str("component", "llmMiddleware").Logger(),
	}
}

// BeforeRequest implements Middleware.BeforeRequest.
func (m *LoggingMiddleware) BeforeRequest(ctx context.Context, req *Request) (*Request, error) {
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("tools", len(req.Tools)).
		Int64("max_tokens", req.MaxTokens).
		Msg("Sending LLM request")
	return req, nil
}

// AfterResponse implements Middleware.AfterResponse.
func (m *LoggingMiddleware) AfterResponse(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	ev := m.logger.Debug().
		Str("model", req.Model).
		Str("stop_reason", string(resp.StopReason)).
		Int("blocks", len(resp.Content))
	if resp.Usage != nil {
		ev = ev.Int64("input_tokens", resp.Usage.InputTokens).
			Int64("output_tokens", resp.Usage.OutputTokens)
	}
	ev.Msg("Received LLM response")
	return resp, nil
}

// OnError implements Middleware.OnError.
func (m *LoggingMiddleware) OnError(ctx context.Context, req *Request, err error) error {
	m.logger.Warn().
		Str("model", req.Model).
		Str("kind", string(KindOf(err))).
		Err(err).
		Msg("LLM request failed")
	return err
}

// BeforeStream implements StreamMiddleware.BeforeStream.
func (m *LoggingMiddleware) BeforeStream(ctx context.Context, req *Request) (*Request, error) {
	m.logger.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Time("started_at", time.Now()).
		Msg("Starting LLM stream")
	return req, nil
}

// OnStreamEvent implements StreamMiddleware.OnStreamEvent.
func (m *LoggingMiddleware) OnStreamEvent(ctx context.Context, req *Request, event *StreamEvent) (*StreamEvent, error) {
	if event.Type == StreamEventTypeStop {
		m.logger.Debug().
			Str("model", req.Model).
			Str("stop_reason", string(event.StopReason)).
			Msg("LLM stream finished")
	}
	return event, nil
}

// OnStreamError implements StreamMiddleware.OnStreamError.
func (m *LoggingMiddleware) OnStreamError(ctx context.Context, req *Request, err error) error {
	m.logger.Warn().
		Str("model", req.Model).
		Str("kind", string(KindOf(err))).
		Err(err).
		Msg("LLM stream failed")
	return err
}

var _ Middleware = (*LoggingMiddleware)(nil)
var _ StreamMiddleware = (*LoggingMiddleware)(nil)
