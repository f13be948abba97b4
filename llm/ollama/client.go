// Package ollama implements the llm.Client interface for a local or
// remote Ollama server, using the official api package.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// Client implements llm.Client for Ollama.
type Client struct {
	client *api.Client
	model  string // default model when the request leaves Model empty
	logger zerolog.Logger
}

// NewClient creates an Ollama-backed client. An empty host falls back
// to OLLAMA_HOST or http://localhost:11434 via the api package.
func NewClient(host, model string, logger zerolog.Logger) (*Client, error) {
	var client *api.Client
	if host != "" {
		baseURL, err := parseHost(host)
		if err != nil {
			return nil, llm.NewError(llm.KindConfiguration, fmt.Sprintf("ollama: invalid host %q: %v", host, err), err)
		}
		client = api.NewClient(baseURL, &http.Client{})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, llm.NewError(llm.KindConfiguration, fmt.Sprintf("ollama: creating client: %v", err), err)
		}
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger.With().Str("component", "ollamaClient").Logger(),
	}, nil
}

// parseHost parses a host string into a URL, assuming http when no
// scheme is given.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Kind implements llm.Client.Kind.
func (c *Client) Kind() llm.ClientKind {
	return llm.ClientKindHTTP
}

func (c *Client) buildRequest(req *llm.Request, stream bool) (*api.ChatRequest, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, llm.NewError(llm.KindInvalidRequest, "ollama: model is required", nil)
	}

	messages := ToMessages(req.Messages, req.Tools)
	if req.System != "" {
		systemMsg := api.Message{Role: "system", Content: req.System}
		messages = append([]api.Message{systemMsg}, messages...)
	}

	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options:  make(map[string]interface{}),
	}
	if len(req.Tools) > 0 {
		chatReq.Tools = ToTools(req.Tools)
	}
	if req.MaxTokens > 0 {
		chatReq.Options["num_predict"] = int(req.MaxTokens)
	}
	if req.Temperature != nil {
		chatReq.Options["temperature"] = *req.Temperature
	}
	return chatReq, nil
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, "ollama: request is required", nil)
	}

	chatReq, err := c.buildRequest(req, false)
	if err != nil {
		return nil, err
	}

	var chatResp api.ChatResponse
	err = c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		return nil, convertError(ctx, err)
	}

	resp := &llm.Response{
		Model:   chatResp.Model,
		Content: fromChatResponse(chatResp),
		Usage: &llm.Usage{
			InputTokens:  int64(chatResp.PromptEvalCount),
			OutputTokens: int64(chatResp.EvalCount),
		},
		StopReason: llm.StopReasonFromWire(chatResp.DoneReason),
	}
	if resp.StopReason == llm.StopReasonNone && chatResp.Done {
		resp.StopReason = llm.StopReasonEndTurn
	}
	if resp.HasToolUse() {
		resp.StopReason = llm.StopReasonToolUse
	}
	return resp, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, "ollama: request is required", nil)
	}

	chatReq, err := c.buildRequest(req, true)
	if err != nil {
		return nil, err
	}

	return newStream(ctx, c.client, chatReq, c.logger), nil
}

// convertError maps api errors onto the shared taxonomy. StatusError
// carries the HTTP status for server-reported failures; anything else
// is a transport problem.
func convertError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := llm.FromContext(ctx); ctxErr != nil {
		return ctxErr
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		message := statusErr.ErrorMessage
		if message == "" {
			message = statusErr.Status
		}
		return llm.FromHTTPStatus(statusErr.StatusCode, fmt.Sprintf("ollama: %s", message), err)
	}

	return llm.NewError(llm.KindNetwork, fmt.Sprintf("ollama: %v", err), err)
}
