// Package windowing trims a conversation to an input token budget before it
// is sent to the model. Messages are kept newest first in whole spans so a
// tool_use turn never travels without its tool_result turn.
package windowing
