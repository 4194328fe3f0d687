// ABOUTME: Embedded API documentation shared by the HTTP docs routes and MCP resources
// ABOUTME: Exposes the reference markdown and OpenAPI document as byte slices

// Package docs holds the API documentation assets embedded into the binary.
// The server package renders them at /docs and /openapi.yaml; the mcp package
// exposes the same documents as MCP resources under api-docs:// URIs.
package docs

import (
	"embed"
)

//go:embed api.md openapi.yaml endpoints.md examples.md
var docsFS embed.FS

func mustRead(name string) []byte {
	data, err := docsFS.ReadFile(name)
	if err != nil {
		// Unreachable: go:embed guarantees the file is compiled in
		panic("docs: missing embedded asset " + name)
	}
	return data
}

// APIReference returns the top-level API reference markdown.
func APIReference() []byte { return mustRead("api.md") }

// OpenAPI returns the OpenAPI 3 document in YAML form.
func OpenAPI() []byte { return mustRead("openapi.yaml") }

// Endpoints returns the detailed REST endpoint reference markdown.
func Endpoints() []byte { return mustRead("endpoints.md") }

// Examples returns the request/response example markdown.
func Examples() []byte { return mustRead("examples.md") }
