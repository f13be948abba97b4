package gemini

import (
	"github.com/promptwire/promptwire/llm"
)

// Wire types for the Generative Language v1beta API. Roles are "user"
// and "model"; tool traffic rides in functionCall / functionResponse
// parts keyed by function name rather than call ID.

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Tools             []toolDecl        `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type functionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type generationConfig struct {
	MaxOutputTokens int64    `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type toolDecl struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata"`
	ModelVersion  string         `json:"modelVersion"`
	ResponseID    string         `json:"responseId"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int64 `json:"promptTokenCount"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// buildContents converts neutral messages to Gemini contents. Function
// responses must be keyed by the function's name, which the neutral
// tool-result block does not carry, so names are recovered from the
// tool-use blocks seen earlier in the conversation.
func buildContents(msgs []llm.Message) []content {
	toolNames := make(map[string]string)
	for _, msg := range msgs {
		for _, block := range msg.Content {
			if block.Type == llm.ContentBlockTypeToolUse && block.ToolUse != nil {
				toolNames[block.ToolUse.ID] = block.ToolUse.Name
			}
		}
	}

	contents := make([]content, 0, len(msgs))
	for _, msg := range msgs {
		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}

		parts := make([]part, 0, len(msg.Content))
		for _, block := range msg.Content {
			switch block.Type {
			case llm.ContentBlockTypeText:
				parts = append(parts, part{Text: block.Text})

			case llm.ContentBlockTypeToolUse:
				if block.ToolUse == nil {
					continue
				}
				args := block.ToolUse.Input
				if args == nil {
					args = make(map[string]interface{})
				}
				parts = append(parts, part{FunctionCall: &functionCall{
					Name: block.ToolUse.Name,
					Args: args,
				}})

			case llm.ContentBlockTypeToolResult:
				if block.ToolResult == nil {
					continue
				}
				name := toolNames[block.ToolResult.ID]
				if name == "" {
					name = block.ToolResult.ID
				}
				response := map[string]interface{}{"output": block.ToolResult.Content}
				if block.ToolResult.IsError {
					response = map[string]interface{}{"error": block.ToolResult.Content}
				}
				parts = append(parts, part{FunctionResponse: &functionResponse{
					Name:     name,
					Response: response,
				}})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, content{Role: role, Parts: parts})
	}
	return contents
}

// buildTools converts tool specs into a single declaration group:
// {"functionDeclarations":[{name, description, parameters}]}.
func buildTools(specs []llm.ToolSpec) []toolDecl {
	if len(specs) == 0 {
		return nil
	}
	decls := make([]functionDeclaration, 0, len(specs))
	for i := range specs {
		spec := &specs[i]
		decls = append(decls, functionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Schema.SchemaMap(),
		})
	}
	return []toolDecl{{FunctionDeclarations: decls}}
}

// fromParts converts candidate parts back into neutral content blocks.
// Gemini does not assign call IDs, so tool uses are correlated by the
// function name itself.
func fromParts(parts []part) []llm.ContentBlock {
	blocks := make([]llm.ContentBlock, 0, len(parts))
	for _, p := range parts {
		switch {
		case p.FunctionCall != nil:
			args := p.FunctionCall.Args
			if args == nil {
				args = make(map[string]interface{})
			}
			blocks = append(blocks, llm.ContentBlock{
				Type: llm.ContentBlockTypeToolUse,
				ToolUse: &llm.ToolUseBlock{
					ID:    p.FunctionCall.Name,
					Name:  p.FunctionCall.Name,
					Input: args,
				},
			})
		case p.Text != "":
			blocks = append(blocks, llm.ContentBlock{
				Type: llm.ContentBlockTypeText,
				Text: p.Text,
			})
		}
	}
	return blocks
}
