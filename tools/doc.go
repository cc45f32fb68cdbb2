// Package tools defines tool callback contracts and the built-in tools.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Provider: a source of tool definitions (static lists, remote MCP servers).
//   - Built-in tools: current_time.
//   - Invariant: tool names are unique across every provider attached to a client.
package tools
