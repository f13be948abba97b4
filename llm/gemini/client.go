// Package gemini implements the llm.Client interface for Google's
// Generative Language API (v1beta). There is no SDK dependency; the
// client speaks the REST surface directly, including the SSE framing
// used by streamGenerateContent.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/promptwire/promptwire/llm"
)

// DefaultBaseURL is the Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

const defaultTimeout = 120 * time.Second

// Client implements llm.Client for Gemini models.
type Client struct {
	apiKey     string
	baseURL    string
	model      string // default model when the request leaves Model empty
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Gemini-backed client. baseURL and model are
// optional; the API key is not.
func NewClient(apiKey, baseURL, model string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, llm.NewError(llm.KindConfiguration, "gemini: api key is required", nil)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With().Str("component", "geminiClient").Logger(),
	}, nil
}

// Kind implements llm.Client.Kind.
func (c *Client) Kind() llm.ClientKind {
	return llm.ClientKindHTTP
}

func (c *Client) buildRequest(req *llm.Request) (*generateRequest, string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return nil, "", llm.NewError(llm.KindInvalidRequest, "gemini: model is required", nil)
	}

	genReq := &generateRequest{
		Contents: buildContents(req.Messages),
		Tools:    buildTools(req.Tools),
	}
	if req.System != "" {
		genReq.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 || req.Temperature != nil {
		genReq.GenerationConfig = &generationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}
	return genReq, model, nil
}

func (c *Client) endpoint(model, method string, stream bool) string {
	u := fmt.Sprintf("%s/v1beta/models/%s:%s?key=%s",
		c.baseURL, url.PathEscape(model), method, url.QueryEscape(c.apiKey))
	if stream {
		u += "&alt=sse"
	}
	return u
}

// Synchronous implements llm.Client.Synchronous.
func (c *Client) Synchronous(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, "gemini: request is required", nil)
	}

	genReq, model, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, c.endpoint(model, "generateContent", false), genReq)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var genResp generateResponse
	if err := json.NewDecoder(body).Decode(&genResp); err != nil {
		return nil, llm.NewError(llm.KindInvalidResponse, fmt.Sprintf("gemini: decoding response: %v", err), err)
	}
	if len(genResp.Candidates) == 0 {
		return nil, llm.NewError(llm.KindInvalidResponse, "gemini: no candidates in response", nil)
	}

	cand := genResp.Candidates[0]
	resp := &llm.Response{
		ID:         genResp.ResponseID,
		Model:      genResp.ModelVersion,
		Content:    fromParts(cand.Content.Parts),
		StopReason: llm.StopReasonFromWire(cand.FinishReason),
	}
	if resp.Model == "" {
		resp.Model = model
	}
	if genResp.UsageMetadata != nil {
		resp.Usage = &llm.Usage{
			InputTokens:  genResp.UsageMetadata.PromptTokenCount,
			OutputTokens: genResp.UsageMetadata.CandidatesTokenCount,
		}
	}
	// A function call ends the candidate with finishReason STOP; the
	// neutral contract reports tool use instead.
	if resp.HasToolUse() {
		resp.StopReason = llm.StopReasonToolUse
	}
	return resp, nil
}

// Stream implements llm.Client.Stream.
func (c *Client) Stream(ctx context.Context, req *llm.Request) (llm.Stream, error) {
	if req == nil {
		return nil, llm.NewError(llm.KindInvalidRequest, "gemini: request is required", nil)
	}

	genReq, model, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, c.endpoint(model, "streamGenerateContent", true), genReq)
	if err != nil {
		return nil, err
	}

	return newStream(ctx, body, c.logger), nil
}

// post sends the JSON payload and returns the response body on 2xx.
// Non-2xx responses are drained for the {"error":{message,status}}
// envelope; its message overrides the bare status text.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) (io.ReadCloser, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, llm.NewError(llm.KindSerialization, fmt.Sprintf("gemini: encoding request: %v", err), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, llm.NewError(llm.KindInvalidRequest, fmt.Sprintf("gemini: building request: %v", err), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := llm.FromContext(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, llm.NewError(llm.KindNetwork, fmt.Sprintf("gemini: %v", err), err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		message := httpResp.Status
		raw, readErr := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
		if readErr == nil {
			var errResp errorResponse
			if json.Unmarshal(raw, &errResp) == nil && errResp.Error.Message != "" {
				message = errResp.Error.Message
			}
		}
		return nil, llm.FromHTTPStatus(httpResp.StatusCode, fmt.Sprintf("gemini: %s", message), nil)
	}

	return httpResp.Body, nil
}
