// Package cliagent implements the llm.Client interface over external
// agent binaries. An Agent describes one binary's invocation contract
// (argv, stdin, output parsing); the shared client handles process
// spawning, cancellation, session propagation, and error mapping.
package cliagent

import (
	"os"
	"os/exec"

	"github.com/promptwire/promptwire/llm"
)

// Agent is the invocation contract a CLI binary adapter implements.
type Agent interface {
	// Name is the provider-facing agent name, used in error messages.
	Name() string

	// ExecutablePath resolves the binary to invoke. Implementations
	// should consult an explicit configured path, then an
	// environment-variable override, then the shell path.
	ExecutablePath() (string, error)

	// BuildArgv computes the command line for one invocation. session
	// is the identifier carried over from a previous invocation, empty
	// on the first call or when persistence is off.
	BuildArgv(req *llm.Request, session string, streaming bool) ([]string, error)

	// BuildStdin returns the bytes to feed the child's standard input
	// and whether stdin is used at all.
	BuildStdin(req *llm.Request) ([]byte, bool)

	// ParseOutput extracts the canonical result from a non-streaming
	// invocation's standard output.
	ParseOutput(stdout []byte) (*Result, error)

	// ParseStreamLine folds one NDJSON line into the accumulator and
	// returns any stream events it produced. The terminal line sets
	// acc.Done.
	ParseStreamLine(line []byte, acc *Accumulator) ([]*llm.StreamEvent, error)

	// PersistSession reports whether the session identifier from one
	// invocation should be forwarded to the next.
	PersistSession() bool
}

// Result is the parsed outcome of one agent invocation.
type Result struct {
	Response     *llm.Response
	SessionID    string
	TotalCostUSD float64
}

// Accumulator collects streaming state across NDJSON lines.
type Accumulator struct {
	Text      string
	SessionID string
	Usage     *llm.Usage
	Done      bool
}

// ResolveExecutable resolves a binary using the standard precedence:
// explicit configured path, environment-variable override, then a
// shell-path lookup of the bare name.
func ResolveExecutable(configured, envVar, name string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", llm.NewError(llm.KindCLINotFound, name+": configured binary not found: "+configured, err)
		}
		return configured, nil
	}
	if override := os.Getenv(envVar); override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", llm.NewError(llm.KindCLINotFound, name+": "+envVar+" points to a missing binary: "+override, err)
		}
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", llm.NewError(llm.KindCLINotFound, name+": binary not found in PATH", err)
	}
	return path, nil
}

// RenderPrompt flattens a conversation into the single prompt string a
// CLI agent accepts. With session persistence the agent keeps its own
// history, so only the trailing user message is sent; without it the
// whole conversation is replayed with role prefixes.
func RenderPrompt(msgs []llm.Message, persistSession bool) string {
	if persistSession {
		for i := len(msgs) - 1; i >= 0; i-- {
			if msgs[i].Role == llm.RoleUser {
				if text := messageText(msgs[i]); text != "" {
					return text
				}
			}
		}
	}

	var out string
	for _, msg := range msgs {
		text := messageText(msg)
		if text == "" {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		switch msg.Role {
		case llm.RoleAssistant:
			out += "Assistant: " + text
		case llm.RoleUser:
			out += "User: " + text
		default:
			out += text
		}
	}
	return out
}

func messageText(msg llm.Message) string {
	var text string
	for _, block := range msg.Content {
		if block.Type != llm.ContentBlockTypeText {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += block.Text
	}
	return text
}
