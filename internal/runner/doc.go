// Package runner is the terminal stage of an advisor chain: it sends the
// request to the Anthropic Messages API and keeps executing the tools the
// model asks for until it answers in text.
//
// Invariant:
//   - an assistant tool_use turn is always followed directly by the user
//     tool_result turn answering it.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
