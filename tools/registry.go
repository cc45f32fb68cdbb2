package tools

// Registry returns the built-in tool definitions wired for the agent.
func Registry() []ToolDefinition {
	return []ToolDefinition{CurrentTimeDefinition}
}
