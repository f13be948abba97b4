// Package opencode implements the cliagent.Agent contract for the
// OpenCode binary. The prompt is fed on standard input; session
// persistence is off by default and opted into per agent.
package opencode

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
	"github.com/promptwire/promptwire/llm/cliagent"
)

const (
	binaryName = "opencode"
	pathEnvVar = "OPENCODE_PATH"
)

// Agent describes one OpenCode installation.
type Agent struct {
	binaryPath     string
	model          string
	persistSession bool
}

// Option configures an Agent.
type Option func(*Agent)

// WithBinaryPath pins the executable instead of resolving it through
// OPENCODE_PATH or the shell path.
func WithBinaryPath(path string) Option {
	return func(a *Agent) { a.binaryPath = path }
}

// WithSessionPersistence forwards the session identifier discovered
// from the first invocation to later ones.
func WithSessionPersistence() Option {
	return func(a *Agent) { a.persistSession = true }
}

// NewAgent creates an OpenCode agent for the given model.
func NewAgent(model string, opts ...Option) *Agent {
	a := &Agent{model: model}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewClient creates an llm.Client backed by the OpenCode binary.
func NewClient(model string, logger zerolog.Logger, opts ...Option) *cliagent.Client {
	return cliagent.NewClient(NewAgent(model, opts...), logger)
}

// Name implements cliagent.Agent.
func (a *Agent) Name() string { return "opencode" }

// PersistSession implements cliagent.Agent.
func (a *Agent) PersistSession() bool { return a.persistSession }

// ExecutablePath implements cliagent.Agent.
func (a *Agent) ExecutablePath() (string, error) {
	return cliagent.ResolveExecutable(a.binaryPath, pathEnvVar, binaryName)
}

// BuildArgv implements cliagent.Agent. Output is NDJSON in both modes,
// so the argv does not vary with streaming.
func (a *Agent) BuildArgv(req *llm.Request, session string, streaming bool) ([]string, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}
	if model == "" {
		return nil, llm.NewError(llm.KindInvalidRequest, "opencode: model is required", nil)
	}

	argv := []string{"run", "--format", "json", "--model", model}
	if session != "" {
		argv = append(argv, "--session", session)
	}
	return argv, nil
}

// BuildStdin implements cliagent.Agent. The prompt arrives on stdin,
// with the system prompt wrapped in a leading <system> block.
func (a *Agent) BuildStdin(req *llm.Request) ([]byte, bool) {
	var b strings.Builder
	if req.System != "" {
		b.WriteString("<system>")
		b.WriteString(req.System)
		b.WriteString("</system>\n\n")
	}
	b.WriteString(cliagent.RenderPrompt(req.Messages, a.persistSession))
	return []byte(b.String()), true
}

// event is the union of NDJSON output shapes.
type event struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionID"`
	Part      struct {
		Text      string `json:"text"`
		SessionID string `json:"sessionID"`
		Tokens    struct {
			Input  int64 `json:"input"`
			Output int64 `json:"output"`
		} `json:"tokens"`
	} `json:"part"`
}

// ParseOutput implements cliagent.Agent. Non-streaming output is the
// same NDJSON event sequence, folded into one response.
func (a *Agent) ParseOutput(stdout []byte) (*cliagent.Result, error) {
	var acc cliagent.Accumulator
	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, err := a.ParseStreamLine([]byte(line), &acc); err != nil {
			return nil, err
		}
	}
	if acc.Text == "" && acc.Usage == nil {
		return nil, llm.NewError(llm.KindCLIParse, "opencode: no events in output", nil)
	}

	resp := &llm.Response{
		Content: []llm.ContentBlock{{
			Type: llm.ContentBlockTypeText,
			Text: acc.Text,
		}},
		Usage:      acc.Usage,
		StopReason: llm.StopReasonEndTurn,
	}
	return &cliagent.Result{
		Response:  resp,
		SessionID: acc.SessionID,
	}, nil
}

// ParseStreamLine implements cliagent.Agent.
func (a *Agent) ParseStreamLine(line []byte, acc *cliagent.Accumulator) ([]*llm.StreamEvent, error) {
	var ev event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, llm.NewError(llm.KindCLIParse, fmt.Sprintf("opencode: parsing stream line: %v", err), err)
	}

	if ev.SessionID != "" {
		acc.SessionID = ev.SessionID
	}
	if ev.Part.SessionID != "" {
		acc.SessionID = ev.Part.SessionID
	}

	switch ev.Type {
	case "text":
		if ev.Part.Text == "" {
			return nil, nil
		}
		acc.Text += ev.Part.Text
		return []*llm.StreamEvent{{
			Type: llm.StreamEventTypeContentDelta,
			Delta: &llm.StreamDelta{
				Type: llm.StreamDeltaTypeText,
				Text: ev.Part.Text,
			},
		}}, nil

	case "step_finish":
		acc.Usage = &llm.Usage{
			InputTokens:  ev.Part.Tokens.Input,
			OutputTokens: ev.Part.Tokens.Output,
		}
		return []*llm.StreamEvent{{
			Type:  llm.StreamEventTypeMessageDelta,
			Usage: acc.Usage,
		}}, nil

	default:
		return nil, nil
	}
}
