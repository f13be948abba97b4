// Package openai implements the llm.Client interface on top of the
// OpenAI chat-completions API. The same client also backs providers
// that expose a chat-completions-compatible endpoint behind a custom
// base URL.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/promptwire/promptwire/llm"
)

// Client implements llm.Client for OpenAI's chat-completions API.
type Client struct {
	client *openai.Client
	model  string // default model when the request leaves Model empty
	logger zerolog.Logger
}

// NewClient creates an OpenAI-backed client. baseURL, model, and
// organization are optional; the API key is not.
func NewClient(apiKey, baseURL, model, organization string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, llm.NewError(llm.KindConfiguration, "openai: api key is required", nil)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With().Str("component", "openaiClient").Logger(),
	}, nil
}

// Kind implements llm.Client.Kind.
func (c *Client) Kind() llm.ClientKind {
	return llm.ClientKindHTTP
}

func (c *Client) buildRequest(req *llm.Request, stream bool) (openai.ChatCompletionRequest, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return openai.ChatCompletionRequest{}, llm.NewError(llm.KindInvalidRequest, "openai: model is required", nil)
	}

	messages := ToChatMessages(req.Messages)
	if req.System != "" {
		systemMsg := openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		}
		messages = append([]openai.ChatCompletionMessage{systemMsg}, messages...)
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Stream:   stream,
	}

	if len(req.Tools) > 0 {
		chatReq.Tools = ToTools(req.Tools)
		chatReq.ToolChoice = "auto"
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}

	return chatReq, nil
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, "openai: request is required", nil)
	}

	chatReq, err := c.buildRequest(req, false)
	if err != nil {
		return nil, err
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertError(ctx, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, llm.NewError(llm.KindInvalidResponse, "openai: no choices in response", nil)
	}

	choice := chatResp.Choices[0]
	return &llm.Response{
		ID:      chatResp.ID,
		Model:   chatResp.Model,
		Content: FromChoice(choice),
		Usage: &llm.Usage{
			InputTokens:  int64(chatResp.Usage.PromptTokens),
			OutputTokens: int64(chatResp.Usage.CompletionTokens),
		},
		StopReason: llm.StopReasonFromWire(string(choice.FinishReason)),
	}, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, "openai: request is required", nil)
	}

	chatReq, err := c.buildRequest(req, true)
	if err != nil {
		return nil, err
	}
	chatReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := c.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, convertError(ctx, err)
	}

	return newStream(ctx, stream, c.logger), nil
}

// convertError maps SDK errors onto the shared error taxonomy. Context
// cancellation wins over whatever the transport reported.
func convertError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := llm.FromContext(ctx); ctxErr != nil {
		return ctxErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llm.FromHTTPStatus(apiErr.HTTPStatusCode, fmt.Sprintf("openai: %s", apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llm.FromHTTPStatus(reqErr.HTTPStatusCode, fmt.Sprintf("openai: %v", reqErr.Err), err)
	}

	return llm.NewError(llm.KindNetwork, fmt.Sprintf("openai: %v", err), err)
}
