package anthropic

import (
	"context"
	"errors"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// Client implements the llm.Client interface for Anthropic's Messages API.
type Client struct {
	client *anthropic.Client
	logger zerolog.Logger
}

// NewClient creates a new Anthropic client with the given API key.
// A non-empty baseURL overrides the default endpoint.
func NewClient(apiKey, baseURL string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, llm.Errorf(llm.KindConfiguration, "anthropic api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		client: &client,
		logger: logger.With().Str("component", "anthropicClient").Logger(),
	}, nil
}

// Kind implements llm.Client.Kind.
func (c *Client) Kind() llm.ClientKind {
	return llm.ClientKindHTTP
}

// buildParams translates a neutral request into SDK call parameters.
func buildParams(req *llm.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  ToMessageParams(req.Messages),
		Tools:     ToToolUnionParams(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	return params
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, llm.Errorf(llm.KindInvalidRequest, "request is required")
	}

	message, err := c.client.Messages.New(ctx, buildParams(req))
	if err != nil {
		return nil, convertError(err)
	}

	content := make([]llm.ContentBlock, 0, len(message.Content))
	for _, blockUnion := range message.Content {
		if block, ok := FromContentBlock(blockUnion); ok {
			content = append(content, block)
		}
	}

	usage := &llm.Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	return &llm.Response{
		ID:         message.ID,
		Model:      string(message.Model),
		Content:    content,
		Usage:      usage,
		StopReason: llm.StopReasonFromWire(string(message.StopReason)),
	}, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if req == nil {
		return nil, llm.Errorf(llm.KindInvalidRequest, "request is required")
	}

	stream := c.client.Messages.NewStreaming(ctx, buildParams(req))
	return newStream(ctx, stream, c.logger), nil
}

// convertError maps SDK errors into the neutral taxonomy, preserving
// the provider's message.
func convertError(err error) error {
	if ctxErr := contextKind(err); ctxErr != nil {
		return ctxErr
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return llm.FromHTTPStatus(apiErr.StatusCode, apiErr.Error(), err)
	}
	return llm.NewError(llm.KindNetwork, "anthropic request failed", err)
}

func contextKind(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return llm.NewError(llm.KindCancelled, "anthropic request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return llm.NewError(llm.KindTimeout, "anthropic request timed out", err)
	default:
		return nil
	}
}

var _ llm.Client = (*Client)(nil)
