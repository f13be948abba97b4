// Package claudecode implements the cliagent.Agent contract for the
// Claude Code binary. Invocations use --print with JSON or
// stream-json output; session persistence is on by default, matching
// the binary's own behavior.
package claudecode

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
	"github.com/promptwire/promptwire/llm/cliagent"
)

const (
	binaryName = "claude"
	pathEnvVar = "CLAUDE_CODE_PATH"
)

// Agent describes one Claude Code installation.
type Agent struct {
	binaryPath     string
	model          string
	persistSession bool
}

// Option configures an Agent.
type Option func(*Agent)

// WithBinaryPath pins the executable instead of resolving it through
// CLAUDE_CODE_PATH or the shell path.
func WithBinaryPath(path string) Option {
	return func(a *Agent) { a.binaryPath = path }
}

// WithoutSessionPersistence disables carrying the session identifier
// across invocations.
func WithoutSessionPersistence() Option {
	return func(a *Agent) { a.persistSession = false }
}

// NewAgent creates a Claude Code agent for the given model.
func NewAgent(model string, opts ...Option) *Agent {
	a := &Agent{
		model:          model,
		persistSession: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewClient creates an llm.Client backed by the Claude Code binary.
func NewClient(model string, logger zerolog.Logger, opts ...Option) *cliagent.Client {
	return cliagent.NewClient(NewAgent(model, opts...), logger)
}

// Name implements cliagent.Agent.
func (a *Agent) Name() string { return "claude-code" }

// PersistSession implements cliagent.Agent.
func (a *Agent) PersistSession() bool { return a.persistSession }

// ExecutablePath implements cliagent.Agent.
func (a *Agent) ExecutablePath() (string, error) {
	return cliagent.ResolveExecutable(a.binaryPath, pathEnvVar, binaryName)
}

// BuildArgv implements cliagent.Agent.
func (a *Agent) BuildArgv(req *llm.Request, session string, streaming bool) ([]string, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}
	if model == "" {
		return nil, llm.NewError(llm.KindInvalidRequest, "claude-code: model is required", nil)
	}

	argv := []string{"--print"}
	if streaming {
		// stream-json requires --verbose.
		argv = append(argv, "--output-format", "stream-json", "--verbose")
	} else {
		argv = append(argv, "--output-format", "json")
	}
	argv = append(argv, "--model", model)

	if req.System != "" {
		argv = append(argv, "--system-prompt", req.System)
	}
	if session != "" {
		argv = append(argv, "--resume", session)
	}
	if !a.persistSession {
		argv = append(argv, "--no-session-persistence")
	}

	argv = append(argv, cliagent.RenderPrompt(req.Messages, a.persistSession))
	return argv, nil
}

// BuildStdin implements cliagent.Agent; the prompt travels in argv.
func (a *Agent) BuildStdin(req *llm.Request) ([]byte, bool) {
	return nil, false
}

// resultEvent is the terminal output object in both modes.
type resultEvent struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	Result    string `json:"result"`
	SessionID string `json:"session_id"`
	IsError   bool   `json:"is_error"`
	Usage     struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// assistantEvent is the streaming delta shape.
type assistantEvent struct {
	Type    string `json:"type"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

// ParseOutput implements cliagent.Agent for --output-format json.
func (a *Agent) ParseOutput(stdout []byte) (*cliagent.Result, error) {
	var result resultEvent
	if err := json.Unmarshal(stdout, &result); err != nil {
		return nil, llm.NewError(llm.KindCLIParse, fmt.Sprintf("claude-code: parsing output: %v", err), err)
	}
	if result.Type != "result" {
		return nil, llm.NewError(llm.KindCLIParse, fmt.Sprintf("claude-code: unexpected output type %q", result.Type), nil)
	}
	if result.IsError {
		return nil, llm.NewError(llm.KindCLIExecution, "claude-code: "+result.Result, nil)
	}

	return &cliagent.Result{
		Response: &llm.Response{
			ID: result.SessionID,
			Content: []llm.ContentBlock{{
				Type: llm.ContentBlockTypeText,
				Text: result.Result,
			}},
			Usage: &llm.Usage{
				InputTokens:  result.Usage.InputTokens,
				OutputTokens: result.Usage.OutputTokens,
			},
			StopReason: llm.StopReasonEndTurn,
		},
		SessionID:    result.SessionID,
		TotalCostUSD: result.TotalCostUSD,
	}, nil
}

// ParseStreamLine implements cliagent.Agent for stream-json NDJSON.
func (a *Agent) ParseStreamLine(line []byte, acc *cliagent.Accumulator) ([]*llm.StreamEvent, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &probe); err != nil {
		return nil, llm.NewError(llm.KindCLIParse, fmt.Sprintf("claude-code: parsing stream line: %v", err), err)
	}

	switch probe.Type {
	case "assistant":
		var event assistantEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, llm.NewError(llm.KindCLIParse, fmt.Sprintf("claude-code: parsing assistant event: %v", err), err)
		}
		if event.Message.Text == "" {
			return nil, nil
		}
		acc.Text += event.Message.Text
		return []*llm.StreamEvent{{
			Type: llm.StreamEventTypeContentDelta,
			Delta: &llm.StreamDelta{
				Type: llm.StreamDeltaTypeText,
				Text: event.Message.Text,
			},
		}}, nil

	case "result":
		var result resultEvent
		if err := json.Unmarshal(line, &result); err != nil {
			return nil, llm.NewError(llm.KindCLIParse, fmt.Sprintf("claude-code: parsing result event: %v", err), err)
		}
		acc.SessionID = result.SessionID
		acc.Usage = &llm.Usage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
		}
		acc.Done = true
		stopReason := llm.StopReasonEndTurn
		if result.IsError {
			stopReason = llm.StopReasonError
		}
		return []*llm.StreamEvent{
			{Type: llm.StreamEventTypeMessageDelta, Usage: acc.Usage},
			{Type: llm.StreamEventTypeStop, Usage: acc.Usage, StopReason: stopReason, Done: true},
		}, nil

	default:
		// System and progress events carry no conversational content.
		return nil, nil
	}
}
