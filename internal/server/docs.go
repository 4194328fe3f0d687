// ABOUTME: API documentation endpoints rendered from embedded assets.
// ABOUTME: Serves /docs (markdown converted to HTML) and /openapi.yaml.

package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/fabworks/paramspec-gateway/internal/docs"
)

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Parameter Spec API</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
code, pre { background: #f4f4f4; border-radius: 4px; }
pre { padding: 0.75rem; overflow-x: auto; }
code { padding: 0.1rem 0.3rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
</style>
</head>
<body>
{{.Content}}
</body>
</html>
`))

// registerDocsRoutes registers the documentation endpoints on the mux.
func (s *Server) registerDocsRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/docs", s.handleDocs)
	mux.HandleFunc("/openapi.yaml", s.handleOpenAPI)
}

// handleDocs renders the embedded API reference markdown as HTML.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert(docs.APIReference(), &htmlBuf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := struct{ Content template.HTML }{Content: template.HTML(htmlBuf.String())}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docsPage.Execute(w, data); err != nil {
		s.logger.Error("failed to render docs page", "error", err)
	}
}

// handleOpenAPI serves the embedded OpenAPI document.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Write(docs.OpenAPI())
}
