// Package mcpserver exposes the X search operations as MCP tools.
//
// Tool input schemas are reflected from the request types with
// invopop/jsonschema, and handlers decode their raw arguments strictly.
// Failures are returned as tool results with IsError set and a JSON error
// envelope as text; a handler never returns a Go error to the SDK.
package mcpserver
