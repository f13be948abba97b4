// Package llm provides a provider-neutral abstraction layer for Large
// Language Model (LLM) APIs and local CLI agents.
//
// This package defines common types, interfaces, and utilities that let
// callers work with multiple backends (Anthropic, OpenAI, Gemini, Grok,
// Ollama, Claude Code, OpenCode) without coupling to any provider's
// wire format.
//
// # Core Concepts
//
//  1. Messages: the Message type represents a conversation message with
//     a role (user, assistant, system, tool) and content blocks (text,
//     tool use, tool result). Blocks serialize to the canonical
//     Anthropic-style JSON shapes; a single-text message may use the
//     string shorthand for its content.
//
//  2. Tools: ToolSpec describes a tool the model may invoke;
//     ToolUseBlock and ToolResultBlock carry invocations and their
//     results, correlated by the provider-assigned ID.
//
//  3. Client Interface: Synchronous() for non-streaming calls, Stream()
//     for streaming calls, and Kind() reporting whether the adapter is
//     HTTP- or CLI-based. Implementations live in the per-provider
//     subpackages.
//
//  4. Middleware: the Middleware and StreamMiddleware interfaces add
//     cross-cutting concerns like logging without modifying provider
//     implementations; see WrapWithMiddleware.
//
//  5. Errors: the Error type carries a closed ErrorKind set plus the
//     provider's own message. Callers branch on the kind; the message
//     is diagnostic only.
//
// # Extension Points
//
// To add a new provider:
//  1. Implement the Client interface in a subpackage
//  2. Translate between provider-specific types and llm package types
//  3. Normalize finish reasons with StopReasonFromWire and map
//     transport failures through FromHTTPStatus
package llm
