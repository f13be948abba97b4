package schemas

import (
	"github.com/promptwire/promptwire/llm"
)

// Filesystem returns the file manipulation descriptors.
func Filesystem() []llm.ToolSpec {
	return []llm.ToolSpec{
		llm.NewToolSpec("read",
			"Read a file and return its contents.",
			llm.ToolParam{
				Name:        "path",
				Type:        llm.ParamTypeString,
				Description: "Path of the file to read",
				Required:    true,
			},
			llm.ToolParam{
				Name:        "offset",
				Type:        llm.ParamTypeNumber,
				Description: "Byte offset to start reading from",
			},
			llm.ToolParam{
				Name:        "limit",
				Type:        llm.ParamTypeNumber,
				Description: "Maximum number of bytes to return",
			},
		),
		llm.NewToolSpec("write",
			"Write content to a file, creating or truncating it.",
			llm.ToolParam{
				Name:        "path",
				Type:        llm.ParamTypeString,
				Description: "Path of the file to write",
				Required:    true,
			},
			llm.ToolParam{
				Name:        "content",
				Type:        llm.ParamTypeString,
				Description: "Content to write (defaults to empty)",
			},
		),
		llm.NewToolSpec("edit",
			"Replace the first occurrence of a string in a file.",
			llm.ToolParam{
				Name:        "path",
				Type:        llm.ParamTypeString,
				Description: "Path of the file to edit",
				Required:    true,
			},
			llm.ToolParam{
				Name:        "old_string",
				Type:        llm.ParamTypeString,
				Description: "Exact text to find",
				Required:    true,
			},
			llm.ToolParam{
				Name:        "new_string",
				Type:        llm.ParamTypeString,
				Description: "Replacement text",
				Required:    true,
			},
		),
		llm.NewToolSpec("ls",
			"List a directory with entry type and size.",
			llm.ToolParam{
				Name:        "path",
				Type:        llm.ParamTypeString,
				Description: "Directory to list (defaults to '.')",
			},
		),
	}
}
