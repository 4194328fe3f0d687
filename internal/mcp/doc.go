// Package mcp implements the Model Context Protocol server exposing the
// parameter spec engine to AI agents.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0 over the MCP Streamable HTTP transport:
// a single /mcp endpoint accepting POST for requests and notifications, and
// DELETE for session teardown. Sessions are created by the initialize
// handshake and tracked in memory; subsequent requests carry the
// Mcp-Session-Id header.
//
// # Tools
//
// Two tools are exposed:
//
//   - list_parameter_specs: no arguments, returns the full record set as
//     pretty-printed JSON text content.
//   - add_parameter_spec: takes tool_name, parameter_name, usl, lsl, ucl,
//     lcl, cl; returns the created record.
//
// Validation failures from the engine are reported as tool results with
// isError set and the engine's message as text content, matching how MCP
// clients expect domain errors. JSON-RPC errors are reserved for protocol
// problems (unknown method, malformed params, missing session).
//
// # Resources
//
// The embedded API documentation is exposed as read-only resources under
// api-docs:// URIs (openapi, summary, endpoints, examples) so agents can
// discover the REST surface through resources/list and resources/read.
//
// # Usage
//
//	server, err := mcp.NewServer(mcp.Config{Service: svc, Logger: logger})
//	server.RegisterRoutes(mux)
package mcp
