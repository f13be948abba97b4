package schemas

import (
	"github.com/promptwire/promptwire/llm"
)

// WebFetch returns the HTTP fetch descriptor.
func WebFetch() llm.ToolSpec {
	return llm.NewToolSpec("web_fetch",
		"Fetch a URL with HTTP GET and return the body, capped at 100 KiB.",
		llm.ToolParam{
			Name:        "url",
			Type:        llm.ParamTypeString,
			Description: "URL to fetch",
			Required:    true,
		},
	)
}

// WebSearch returns the web search descriptor. It is registered only
// when a search provider is installed.
func WebSearch() llm.ToolSpec {
	return llm.NewToolSpec("web_search",
		"Search the web and return formatted results (title, url, snippet per result).",
		llm.ToolParam{
			Name:        "query",
			Type:        llm.ParamTypeString,
			Description: "Search query",
			Required:    true,
		},
	)
}
