package anthropic

import (
	"encoding/json"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/samber/lo"

	"github.com/promptwire/promptwire/llm"
)

// ToMessageParam converts an llm.Message to an Anthropic MessageParam.
// The Anthropic wire shapes are the canonical ones, so the mapping is
// block-for-block.
func ToMessageParam(msg llm.Message) anthropic.MessageParam {
	contentBlocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
	for _, block := range msg.Content {
		switch block.Type {
		case llm.ContentBlockTypeText:
			contentBlocks = append(contentBlocks, anthropic.NewTextBlock(block.Text))
		case llm.ContentBlockTypeToolUse:
			if block.ToolUse != nil {
				contentBlocks = append(contentBlocks, anthropic.NewToolUseBlock(
					block.ToolUse.ID,
					block.ToolUse.Input,
					block.ToolUse.Name,
				))
			}
		case llm.ContentBlockTypeToolResult:
			if block.ToolResult != nil {
				contentBlocks = append(contentBlocks, anthropic.NewToolResultBlock(
					block.ToolResult.ID,
					block.ToolResult.Content,
					block.ToolResult.IsError,
				))
			}
		}
	}

	switch msg.Role {
	case llm.RoleAssistant:
		return anthropic.NewAssistantMessage(contentBlocks...)
	default:
		return anthropic.NewUserMessage(contentBlocks...)
	}
}

// ToMessageParams converts a slice of llm.Messages to Anthropic MessageParams.
func ToMessageParams(msgs []llm.Message) []anthropic.MessageParam {
	return lo.Map(msgs, func(msg llm.Message, _ int) anthropic.MessageParam {
		return ToMessageParam(msg)
	})
}

// FromContentBlock converts an Anthropic response content block to an
// llm.ContentBlock. Unknown block types return ok=false and are dropped
// by the caller.
func FromContentBlock(blockUnion anthropic.ContentBlockUnion) (llm.ContentBlock, bool) {
	switch block := blockUnion.AsAny().(type) {
	case anthropic.TextBlock:
		return llm.ContentBlock{
			Type: llm.ContentBlockTypeText,
			Text: block.Text,
		}, true
	case anthropic.ToolUseBlock:
		return llm.ContentBlock{
			Type: llm.ContentBlockTypeToolUse,
			ToolUse: &llm.ToolUseBlock{
				ID:    block.ID,
				Name:  block.Name,
				Input: decodeToolInput(block.Input),
			},
		}, true
	default:
		return llm.ContentBlock{}, false
	}
}

// decodeToolInput converts the SDK's tool input into a plain map via a
// JSON round trip, which tolerates both raw and structured inputs.
func decodeToolInput(input interface{}) map[string]interface{} {
	decoded := make(map[string]interface{})
	if input == nil {
		return decoded
	}
	inputBytes, err := json.Marshal(input)
	if err != nil {
		return decoded
	}
	if err := json.Unmarshal(inputBytes, &decoded); err != nil {
		return make(map[string]interface{})
	}
	return decoded
}

// ToToolUnionParam converts an llm.ToolSpec to an Anthropic ToolUnionParam.
// The Claude wrapper is {"name","description","input_schema":<schema>}.
func ToToolUnionParam(spec *llm.ToolSpec) anthropic.ToolUnionParam {
	toolParam := anthropic.ToolParam{
		Name:        spec.Name,
		Description: anthropic.String(spec.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: spec.Schema.Properties,
			Required:   spec.Schema.Required,
		},
	}
	return anthropic.ToolUnionParam{OfTool: &toolParam}
}

// ToToolUnionParams converts a slice of llm.ToolSpecs to Anthropic ToolUnionParams.
func ToToolUnionParams(specs []llm.ToolSpec) []anthropic.ToolUnionParam {
	return lo.Map(specs, func(spec llm.ToolSpec, _ int) anthropic.ToolUnionParam {
		return ToToolUnionParam(&spec)
	})
}
