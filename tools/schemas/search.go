package schemas

import (
	"github.com/promptwire/promptwire/llm"
)

// Search returns the file search descriptors.
func Search() []llm.ToolSpec {
	return []llm.ToolSpec{
		llm.NewToolSpec("glob",
			"Recursively find files whose basename matches a glob pattern. Returns one absolute path per line.",
			llm.ToolParam{
				Name:        "pattern",
				Type:        llm.ParamTypeString,
				Description: "Glob pattern matched against file basenames (e.g. '*.go')",
				Required:    true,
			},
			llm.ToolParam{
				Name:        "path",
				Type:        llm.ParamTypeString,
				Description: "Directory to search under (defaults to '.')",
			},
		),
		llm.NewToolSpec("grep",
			"Search file contents with a regular expression. Returns 'path:line: text' matches.",
			llm.ToolParam{
				Name:        "pattern",
				Type:        llm.ParamTypeString,
				Description: "Regular expression to search for",
				Required:    true,
			},
			llm.ToolParam{
				Name:        "path",
				Type:        llm.ParamTypeString,
				Description: "Directory to search under (defaults to '.')",
			},
			llm.ToolParam{
				Name:        "glob",
				Type:        llm.ParamTypeString,
				Description: "Restrict the search to files whose basename matches this glob",
			},
		),
	}
}
