package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/promptwire/promptwire/llm"

	"github.com/promptwire/promptwire/tools/schemas"
)

// RegisterSystemTools registers the shell execution tool.
func (r *Registry) RegisterSystemTools() {
	r.Register(schemas.Bash(), func(ctx context.Context, args json.RawMessage) (string, error) {
		var payload struct {
			Command string `json:"command"`
		}
		if err := decodeArgs("bash", args, &payload); err != nil {
			return "", err
		}
		if payload.Command == "" {
			return "", llm.NewError(llm.KindTool, "tools: bash requires a command", nil)
		}

		cmd := exec.CommandContext(ctx, "sh", "-c", payload.Command)
		output, err := cmd.CombinedOutput()
		if err != nil {
			if ctxErr := llm.FromContext(ctx); ctxErr != nil {
				return "", ctxErr
			}
			// Non-zero exits are observations for the model, not
			// failures: the output is prefixed with the exit code.
			if exitErr, ok := err.(*exec.ExitError); ok {
				return fmt.Sprintf("[exit code %d]\n%s", exitErr.ExitCode(), output), nil
			}
			return "", llm.NewError(llm.KindTool, fmt.Sprintf("tools: bash: %v", err), err)
		}
		return string(output), nil
	})
}
