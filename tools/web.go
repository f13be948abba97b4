package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptwire/promptwire/llm"

	"github.com/promptwire/promptwire/tools/schemas"
)

// maxFetchBody caps the body returned by web_fetch.
const maxFetchBody = 100 * 1024

const fetchTimeout = 30 * time.Second

// SearchProvider is the pluggable web search capability. Results are
// formatted as "title\nurl\nsnippet\n---\n" per result.
type SearchProvider interface {
	Search(ctx context.Context, query string) (string, error)
}

// SearchResult is one hit from a search provider.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// FormatSearchResults renders results in the format handlers return to
// the model.
func FormatSearchResults(results []SearchResult) string {
	var out string
	for _, r := range results {
		out += r.Title + "\n" + r.URL + "\n" + r.Snippet + "\n---\n"
	}
	return out
}

// RegisterWebTools registers web_fetch, and web_search when a provider
// is installed. With a nil provider the web_search descriptor is not
// offered; invoking it anyway reports a configuration error.
func (r *Registry) RegisterWebTools(provider SearchProvider) {
	httpClient := &http.Client{Timeout: fetchTimeout}

	r.Register(schemas.WebFetch(), func(ctx context.Context, args json.RawMessage) (string, error) {
		var payload struct {
			URL string `json:"url"`
		}
		if err := decodeArgs("web_fetch", args, &payload); err != nil {
			return "", err
		}
		if payload.URL == "" {
			return "", llm.NewError(llm.KindTool, "tools: web_fetch requires a url", nil)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, payload.URL, nil)
		if err != nil {
			return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: web_fetch: %v", err), err)
		}
		resp, err := httpClient.Do(req)
		if err != nil {
			if ctxErr := llm.FromContext(ctx); ctxErr != nil {
				return "", ctxErr
			}
			return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: web_fetch: %v", err), err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
		if err != nil {
			return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: web_fetch: reading body: %v", err), err)
		}
		return string(body), nil
	})

	if provider == nil {
		// The descriptor is not advertised without a provider, but an
		// invocation still gets a telling error instead of UnknownTool.
		r.registerHidden("web_search", func(ctx context.Context, args json.RawMessage) (string, error) {
			return "", llm.NewError(llm.KindConfiguration, "tools: web_search: no search provider installed", nil)
		})
		return
	}
	r.Register(schemas.WebSearch(), func(ctx context.Context, args json.RawMessage) (string, error) {
		var payload struct {
			Query string `json:"query"`
		}
		if err := decodeArgs("web_search", args, &payload); err != nil {
			return "", err
		}
		if payload.Query == "" {
			return "", llm.NewError(llm.KindTool, "tools: web_search requires a query", nil)
		}
		return provider.Search(ctx, payload.Query)
	})
}
