// Package runner performs one dispatch step of a conversation: send the
// history to the endpoint, append the assistant reply, run any tools the
// reply asks for, and append their results.
//
// Looping is the caller's business. A trailing role=tool message means the
// model should see the results in another step; a trailing assistant message
// with content is a final answer.
//
// Flow:
//
//	system, user -> assistant(tool calls) -> tool, tool -> (caller dispatches again) -> assistant(text)
//
// Calls are detected by a prioritized chain of parsers. Structured calls
// always win; the textual form is only looked for when there are none.
package runner
