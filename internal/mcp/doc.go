// Package mcp connects to Model Context Protocol servers and exposes their
// tools as tools.ToolDefinition values the runner can call.
package mcp
