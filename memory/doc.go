// Package memory holds the in-process conversation history.
//
// History model:
//   - A conversation is an append-only []Message; the first entry is always role=system.
//   - A tool message follows the assistant message carrying the matching call, or is
//     synthesized inline for calls detected in free text (tool_call_id "manual").
//   - Nothing is persisted across runs.
package memory
