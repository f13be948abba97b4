// Package agent implements the multi-turn tool-use loop on top of an
// llm.Client. The runner sends a conversation, dispatches any tool
// uses the model emits to an executor, folds the results back into the
// conversation, and repeats until the model answers in plain text or
// the turn limit trips.
package agent

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// maxTurns bounds one run. Exceeding it is a hard failure.
const maxTurns = 20

// toolFailureResult is the diagnostic content sent back to the model
// when a tool handler fails.
const toolFailureResult = "Error: tool execution failed"

// ErrTurnLimit is returned when the model still demands tools after
// maxTurns chat calls.
var ErrTurnLimit = llm.NewError(llm.KindInvalidRequest, "agent: turn limit exceeded", nil)

// ToolExecutor dispatches one tool use to its handler and returns the
// textual observation for the model.
type ToolExecutor interface {
	Execute(ctx context.Context, toolUse *llm.ToolUseBlock) (string, error)
}

// RunOptions carries the per-run request parameters. Tools are passed
// to every chat call, not just the first.
type RunOptions struct {
	Model       string
	System      string
	MaxTokens   int64
	Temperature *float64
	Tools       []llm.ToolSpec
}

// Runner drives the tool-use loop for one client and executor pair. A
// Runner may serve concurrent runs; each run owns its own working
// conversation.
type Runner struct {
	client   llm.Client
	executor ToolExecutor
	logger   zerolog.Logger
}

// NewRunner creates a runner.
func NewRunner(client llm.Client, executor ToolExecutor, logger zerolog.Logger) *Runner {
	return &Runner{
		client:   client,
		executor: executor,
		logger:   logger.With().Str("component", "agentRunner").Logger(),
	}
}

func (r *Runner) request(working []llm.Message, opts RunOptions) *llm.Request {
	return &llm.Request{
		Model:       opts.Model,
		Messages:    working,
		System:      opts.System,
		Tools:       opts.Tools,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
}

// Run executes the loop synchronously and returns the model's final
// text. The caller's message slice is not mutated.
func (r *Runner) Run(ctx context.Context, messages []llm.Message, opts RunOptions) (string, error) {
	return r.run(ctx, messages, opts, func(ctx context.Context, working []llm.Message) (*llm.Response, error) {
		return r.client.Synchronous(ctx, r.request(working, opts))
	})
}

// RunStream executes the loop with streaming chat calls, invoking
// onText for each text fragment as it arrives. The accumulated final
// text is returned as in Run.
func (r *Runner) RunStream(ctx context.Context, messages []llm.Message, opts RunOptions, onText func(string) error) (string, error) {
	return r.run(ctx, messages, opts, func(ctx context.Context, working []llm.Message) (*llm.Response, error) {
		stream, err := r.client.Stream(ctx, r.request(working, opts))
		if err != nil {
			return nil, err
		}
		return collectStream(stream, onText)
	})
}

type chatFunc func(ctx context.Context, working []llm.Message) (*llm.Response, error)

func (r *Runner) run(ctx context.Context, messages []llm.Message, opts RunOptions, chat chatFunc) (string, error) {
	// The working list is owned by the loop; the callers' message
	// objects are shared by reference.
	working := make([]llm.Message, len(messages))
	copy(working, messages)

	for turn := 1; ; turn++ {
		if err := llm.FromContext(ctx); err != nil {
			return "", err
		}

		response, err := chat(ctx, working)
		if err != nil {
			return "", err
		}

		toolUses := response.ToolUses()
		if len(toolUses) == 0 {
			r.logger.Debug().Int("turns", turn).Msg("run finished")
			return response.ConcatenatedText(), nil
		}
		if turn >= maxTurns {
			r.logger.Warn().Int("turns", turn).Msg("turn limit exceeded")
			return "", ErrTurnLimit
		}

		// Re-present the assistant message with its original blocks so
		// the provider can correlate results by tool-use identifier.
		working = append(working, llm.Message{
			Role:    llm.RoleAssistant,
			Content: response.Content,
		})

		for _, toolUse := range toolUses {
			result, execErr := r.executor.Execute(ctx, toolUse)
			isError := execErr != nil
			if isError {
				r.logger.Debug().Err(execErr).Str("tool", toolUse.Name).Str("toolID", toolUse.ID).Msg("tool execution failed")
				result = toolFailureResult
			}
			working = append(working, llm.NewToolResultMessage([]llm.ToolResultBlock{{
				ID:      toolUse.ID,
				Content: result,
				IsError: isError,
			}}))
		}
	}
}

// collectStream folds a stream into a full response, forwarding text
// deltas to onText as they arrive.
func collectStream(stream llm.Stream, onText func(string) error) (*llm.Response, error) {
	defer stream.Close()

	var content []llm.ContentBlock
	var text string
	var usage *llm.Usage
	stopReason := llm.StopReasonNone

	flushText := func() {
		if text != "" {
			content = append(content, llm.ContentBlock{
				Type: llm.ContentBlockTypeText,
				Text: text,
			})
			text = ""
		}
	}

	for stream.Next() {
		event := stream.Event()
		if event == nil {
			continue
		}
		switch event.Type {
		case llm.StreamEventTypeContentDelta:
			if event.Delta != nil && event.Delta.Type == llm.StreamDeltaTypeText {
				text += event.Delta.Text
				if onText != nil {
					if err := onText(event.Delta.Text); err != nil {
						return nil, llm.NewError(llm.KindStreaming, "agent: stream callback failed: "+err.Error(), err)
					}
				}
			}
		case llm.StreamEventTypeContentBlock:
			if event.Delta != nil && event.Delta.Type == llm.StreamDeltaTypeToolUse && event.Delta.ToolUse != nil {
				flushText()
				content = append(content, llm.ContentBlock{
					Type:    llm.ContentBlockTypeToolUse,
					ToolUse: event.Delta.ToolUse,
				})
			}
		case llm.StreamEventTypeMessageDelta, llm.StreamEventTypeStop:
			if event.Usage != nil {
				usage = event.Usage
			}
			if event.StopReason != llm.StopReasonNone {
				stopReason = event.StopReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	flushText()

	if stopReason == llm.StopReasonError {
		return nil, llm.NewError(llm.KindStreaming, "agent: stream ended with error stop reason", nil)
	}

	return &llm.Response{
		Content:    content,
		Usage:      usage,
		StopReason: stopReason,
	}, nil
}
