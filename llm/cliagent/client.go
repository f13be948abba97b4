package cliagent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// Client adapts an Agent to the llm.Client interface. It owns the
// session identifier discovered from the agent's first invocation and
// forwards it on later calls when the agent persists sessions.
type Client struct {
	agent  Agent
	logger zerolog.Logger

	mu      sync.Mutex
	session string
}

// NewClient wraps an agent in an llm.Client.
func NewClient(agent Agent, logger zerolog.Logger) *Client {
	return &Client{
		agent:  agent,
		logger: logger.With().Str("component", "cliClient").Str("agent", agent.Name()).Logger(),
	}
}

// Kind implements llm.Client.Kind.
func (c *Client) Kind() llm.ClientKind {
	return llm.ClientKindCLI
}

// SessionID returns the session identifier carried from the last
// invocation, empty when none was discovered.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) currentSession() string {
	if !c.agent.PersistSession() {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) recordSession(id string) {
	if id == "" || !c.agent.PersistSession() {
		return
	}
	c.mu.Lock()
	c.session = id
	c.mu.Unlock()
}

func (c *Client) command(ctx context.Context, req *llm.Request, streaming bool) (*exec.Cmd, error) {
	path, err := c.agent.ExecutablePath()
	if err != nil {
		return nil, err
	}
	argv, err := c.agent.BuildArgv(req, c.currentSession(), streaming)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, argv...)
	if stdin, ok := c.agent.BuildStdin(req); ok {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	return cmd, nil
}

// Synchronous implements llm.Client.Synchronous by running the agent
// binary to completion and parsing its standard output.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, c.agent.Name()+": request is required", nil)
	}

	cmd, err := c.command(ctx, req, false)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug().Str("path", cmd.Path).Msg("invoking agent")
	if err := cmd.Run(); err != nil {
		return nil, c.execError(ctx, err, stderr.String())
	}

	result, err := c.agent.ParseOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	c.recordSession(result.SessionID)
	return result.Response, nil
}

// Stream implements llm.Client.Stream by scanning the agent's NDJSON
// output line by line.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, c.agent.Name()+": request is required", nil)
	}

	cmd, err := c.command(ctx, req, true)
	if err != nil {
		return nil, err
	}

	return newStream(ctx, c, cmd), nil
}

func (c *Client) execError(ctx context.Context, err error, stderr string) error {
	if ctxErr := llm.FromContext(ctx); ctxErr != nil {
		return ctxErr
	}
	message := fmt.Sprintf("%s: %v", c.agent.Name(), err)
	if detail := strings.TrimSpace(stderr); detail != "" {
		message += ": " + detail
	}
	return llm.NewError(llm.KindCLIExecution, message, err)
}
