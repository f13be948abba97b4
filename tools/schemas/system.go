package schemas

import (
	"github.com/promptwire/promptwire/llm"
)

// Bash returns the shell execution descriptor.
func Bash() llm.ToolSpec {
	return llm.NewToolSpec("bash",
		"Run a shell command and return its combined output. Non-zero exits are reported with an '[exit code N]' prefix rather than failing.",
		llm.ToolParam{
			Name:        "command",
			Type:        llm.ParamTypeString,
			Description: "Shell pipeline to execute (e.g. 'ls -la | head')",
			Required:    true,
		},
	)
}
