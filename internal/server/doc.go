// Package server assembles the HTTP surface of paramspec-gateway.
//
// A single listener hosts three route groups:
//
//   - /api/parameter-specs: the REST adapter over the validation engine
//     (GET lists, POST creates)
//   - /docs and /openapi.yaml: API reference rendered from embedded assets
//   - /mcp: the MCP endpoint from the mcp package
//
// All responses and error bodies are JSON; validation failures map to 400,
// duplicates to 409, wrong content type to 415, and store faults to a
// generic 500. Permissive CORS headers are applied at the root handler.
//
// The listener is either plain TCP (server.http_addr) or a Tailscale tsnet
// node (tailscale.enabled), optionally with Tailscale-provisioned HTTPS or
// public Funnel exposure. Run blocks until the context is canceled and then
// shuts down gracefully with a five second deadline.
package server
