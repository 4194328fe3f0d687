// ABOUTME: MCP-compatible HTTP server exposing parameter spec tools to AI agents.
// ABOUTME: Implements Streamable HTTP transport (spec 2025-11-25) with session management.

package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fabworks/paramspec-gateway/internal/docs"
	"github.com/fabworks/paramspec-gateway/internal/specs"
)

// Supported MCP protocol versions
var supportedProtocolVersions = map[string]bool{
	"2025-03-26": true,
	"2025-11-25": true,
}

// latestProtocolVersion is the version we advertise in initialize responses
const latestProtocolVersion = "2025-11-25"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes, plus the MCP resource-not-found code
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603

	MCPResourceNotFound = -32002
)

// MCP-specific types

// MCPToolInfo represents an MCP tool definition.
type MCPToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// MCPListToolsResult is the result for tools/list.
type MCPListToolsResult struct {
	Tools []MCPToolInfo `json:"tools"`
}

// MCPCallToolParams are the params for tools/call.
type MCPCallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// MCPCallToolResult is the result for tools/call.
type MCPCallToolResult struct {
	Content []MCPContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

// MCPContent represents content in a tool result.
type MCPContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MCPResourceInfo represents an MCP resource definition.
type MCPResourceInfo struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// MCPListResourcesResult is the result for resources/list.
type MCPListResourcesResult struct {
	Resources []MCPResourceInfo `json:"resources"`
}

// MCPReadResourceParams are the params for resources/read.
type MCPReadResourceParams struct {
	URI string `json:"uri"`
}

// MCPResourceContents is one document in a resources/read result.
type MCPResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// MCPReadResourceResult is the result for resources/read.
type MCPReadResourceResult struct {
	Contents []MCPResourceContents `json:"contents"`
}

// Tool names exposed by this server.
const (
	ToolListParameterSpecs = "list_parameter_specs"
	ToolAddParameterSpec   = "add_parameter_spec"
)

// toolDefinitions are the static tool schemas advertised via tools/list.
var toolDefinitions = []MCPToolInfo{
	{
		Name:        ToolListParameterSpecs,
		Description: "List all EQP parameter specifications",
		InputSchema: json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
	},
	{
		Name:        ToolAddParameterSpec,
		Description: "Add a new EQP parameter specification",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"tool_name": {"type": "string", "description": "Tool/machine name (1-100 characters)"},
				"parameter_name": {"type": "string", "description": "Parameter name (1-100 characters)"},
				"usl": {"type": "number", "description": "Upper Specification Limit"},
				"lsl": {"type": "number", "description": "Lower Specification Limit"},
				"ucl": {"type": "number", "description": "Upper Control Limit"},
				"lcl": {"type": "number", "description": "Lower Control Limit"},
				"cl": {"type": "number", "description": "Center Line"}
			},
			"required": ["tool_name", "parameter_name", "usl", "lsl", "ucl", "lcl", "cl"]
		}`),
	},
}

// Resource URIs exposed by this server. Each serves a piece of the embedded
// API documentation so agents can discover the REST surface without leaving
// the protocol.
const (
	ResourceOpenAPI   = "api-docs://openapi"
	ResourceSummary   = "api-docs://summary"
	ResourceEndpoints = "api-docs://endpoints"
	ResourceExamples  = "api-docs://examples"
)

// resourceDefinitions are the static resource listings advertised via
// resources/list.
var resourceDefinitions = []MCPResourceInfo{
	{
		URI:         ResourceOpenAPI,
		Name:        "OpenAPI specification",
		Description: "Complete OpenAPI specification for the REST API",
		MimeType:    "application/yaml",
	},
	{
		URI:         ResourceSummary,
		Name:        "API summary",
		Description: "Natural language summary of the API and MCP tools",
		MimeType:    "text/markdown",
	},
	{
		URI:         ResourceEndpoints,
		Name:        "Endpoint details",
		Description: "Detailed specifications for all REST API endpoints",
		MimeType:    "text/markdown",
	},
	{
		URI:         ResourceExamples,
		Name:        "Request/response examples",
		Description: "Request and response examples for API endpoints",
		MimeType:    "text/markdown",
	},
}

// resourceContent returns the document body and MIME type for a resource URI.
func resourceContent(uri string) (string, string, bool) {
	switch uri {
	case ResourceOpenAPI:
		return string(docs.OpenAPI()), "application/yaml", true
	case ResourceSummary:
		return string(docs.APIReference()), "text/markdown", true
	case ResourceEndpoints:
		return string(docs.Endpoints()), "text/markdown", true
	case ResourceExamples:
		return string(docs.Examples()), "text/markdown", true
	default:
		return "", "", false
	}
}

// mcpSession tracks an active MCP client session.
type mcpSession struct {
	id              string
	protocolVersion string
	createdAt       time.Time
}

// sessionStore manages active MCP sessions (in-memory).
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*mcpSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*mcpSession)}
}

func (s *sessionStore) create(protocolVersion string) *mcpSession {
	sess := &mcpSession{
		id:              uuid.New().String(),
		protocolVersion: protocolVersion,
		createdAt:       time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

func (s *sessionStore) get(id string) (*mcpSession, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	return existed
}

// Config holds configuration for the MCP server.
type Config struct {
	Service *specs.Service
	Logger  *slog.Logger
}

// Server implements MCP-compatible HTTP endpoints for external agents.
// Conforms to MCP Streamable HTTP transport specification (2025-11-25).
type Server struct {
	service  *specs.Service
	logger   *slog.Logger
	sessions *sessionStore
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		service:  cfg.Service,
		logger:   logger,
		sessions: newSessionStore(),
	}, nil
}

// RegisterRoutes registers the MCP endpoint on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/mcp", s.handleMCP)
	mux.HandleFunc("/mcp/", s.handleMCP)
}

// handleMCP is the single MCP endpoint supporting POST, GET, and DELETE per the
// Streamable HTTP transport spec (2025-11-25).
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePost(w, r)
	case http.MethodGet:
		// We don't support server-initiated SSE streams
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "POST, GET, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleDelete terminates a session per the Streamable HTTP spec.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" {
		http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
		return
	}

	if !s.sessions.delete(sessionID) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	s.logger.Info("MCP session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePost processes JSON-RPC messages sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	// Validate MCP-Protocol-Version header on non-initialize requests.
	// Per spec: server default assumption if missing is 2025-03-26.
	sessionID := r.Header.Get("Mcp-Session-Id")
	protoVersion := r.Header.Get("Mcp-Protocol-Version")

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendJSONRPCError(w, nil, JSONRPCParseError, "failed to read request body", nil)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendJSONRPCError(w, nil, JSONRPCInvalidRequest, "request body too large", nil)
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.sendJSONRPCError(w, nil, JSONRPCParseError, "invalid JSON", nil)
		return
	}

	if req.JSONRPC != "2.0" {
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version", nil)
		return
	}

	isInitialize := req.Method == "initialize"
	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	// Validate protocol version header (not required on initialize)
	if !isInitialize && protoVersion != "" {
		if !supportedProtocolVersions[protoVersion] {
			http.Error(w, "Bad Request: unsupported MCP-Protocol-Version", http.StatusBadRequest)
			return
		}
	}

	// Non-initialize requests require a valid session
	if !isInitialize {
		if sessionID == "" {
			http.Error(w, "Bad Request: missing Mcp-Session-Id", http.StatusBadRequest)
			return
		}
		if _, ok := s.sessions.get(sessionID); !ok {
			// Session expired or invalid - client must re-initialize
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
	}

	s.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", isNotification,
		"session_id", sessionID,
	)

	// Handle notifications: accept and return HTTP 202 with no body
	if isNotification {
		if strings.HasPrefix(req.Method, "notifications/") {
			s.logger.Debug("accepted MCP notification", "method", req.Method)
		} else {
			s.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	// Route to appropriate handler
	switch req.Method {
	case "initialize":
		s.handleInitialize(w, req)
	case "tools/list":
		s.handleToolsList(w, req)
	case "tools/call":
		s.handleToolsCall(w, r, req)
	case "resources/list":
		s.handleResourcesList(w, req)
	case "resources/read":
		s.handleResourcesRead(w, req)
	default:
		s.sendJSONRPCError(w, req.ID, JSONRPCMethodNotFound, "method not found", nil)
	}
}

// handleInitialize handles the MCP initialize handshake and creates a session.
func (s *Server) handleInitialize(w http.ResponseWriter, req JSONRPCRequest) {
	sess := s.sessions.create(latestProtocolVersion)

	s.logger.Info("MCP session created",
		"session_id", sess.id,
		"protocol_version", sess.protocolVersion,
	)

	// Set the session ID header so the client can use it on subsequent requests
	w.Header().Set("Mcp-Session-Id", sess.id)

	result := map[string]any{
		"protocolVersion": latestProtocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"resources": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "paramspec-gateway",
			"version": "1.0.0",
		},
	}
	s.sendJSONRPCResult(w, req.ID, result)
}

// handleToolsList handles tools/list requests.
func (s *Server) handleToolsList(w http.ResponseWriter, req JSONRPCRequest) {
	result := MCPListToolsResult{Tools: toolDefinitions}

	s.logger.Debug("tools/list", "count", len(toolDefinitions))

	s.sendJSONRPCResult(w, req.ID, result)
}

// handleResourcesList handles resources/list requests.
func (s *Server) handleResourcesList(w http.ResponseWriter, req JSONRPCRequest) {
	result := MCPListResourcesResult{Resources: resourceDefinitions}

	s.logger.Debug("resources/list", "count", len(resourceDefinitions))

	s.sendJSONRPCResult(w, req.ID, result)
}

// handleResourcesRead handles resources/read requests for the api-docs:// URIs.
func (s *Server) handleResourcesRead(w http.ResponseWriter, req JSONRPCRequest) {
	var params MCPReadResourceParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "invalid params", nil)
			return
		}
	}

	if params.URI == "" {
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "resource uri is required", nil)
		return
	}

	text, mimeType, ok := resourceContent(params.URI)
	if !ok {
		s.sendJSONRPCError(w, req.ID, MCPResourceNotFound, "resource not found",
			map[string]any{"uri": params.URI})
		return
	}

	s.logger.Debug("resources/read", "uri", params.URI)

	result := MCPReadResourceResult{
		Contents: []MCPResourceContents{{
			URI:      params.URI,
			MimeType: mimeType,
			Text:     text,
		}},
	}
	s.sendJSONRPCResult(w, req.ID, result)
}

// handleToolsCall handles tools/call requests.
func (s *Server) handleToolsCall(w http.ResponseWriter, r *http.Request, req JSONRPCRequest) {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "invalid params", nil)
			return
		}
	}

	if params.Name == "" {
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "tool name is required", nil)
		return
	}

	// Generate request ID for correlation
	requestID := uuid.New().String()

	s.logger.Debug("tools/call",
		"tool_name", params.Name,
		"request_id", requestID,
	)

	var result MCPCallToolResult
	switch params.Name {
	case ToolListParameterSpecs:
		result = s.callListParameterSpecs(r, requestID)
	case ToolAddParameterSpec:
		result = s.callAddParameterSpec(r, requestID, params.Arguments)
	default:
		s.sendJSONRPCError(w, req.ID, JSONRPCInvalidParams, "tool not found", nil)
		return
	}

	s.logger.Debug("tools/call complete",
		"tool_name", params.Name,
		"request_id", requestID,
		"is_error", result.IsError,
	)

	s.sendJSONRPCResult(w, req.ID, result)
}

// callListParameterSpecs executes the list_parameter_specs tool.
func (s *Server) callListParameterSpecs(r *http.Request, requestID string) MCPCallToolResult {
	allSpecs, err := s.service.ListAll(r.Context())
	if err != nil {
		s.logger.Error("list_parameter_specs failed", "request_id", requestID, "error", err)
		return errorResult("failed to read parameter specs")
	}

	text, err := json.MarshalIndent(allSpecs, "", "  ")
	if err != nil {
		return errorResult("failed to encode parameter specs")
	}
	return textResult(string(text))
}

// callAddParameterSpec executes the add_parameter_spec tool. Engine failures
// are reported through the MCP error convention: an isError tool result
// carrying the validation message, not a JSON-RPC error.
func (s *Server) callAddParameterSpec(r *http.Request, requestID string, arguments json.RawMessage) MCPCallToolResult {
	fields, err := decodeArguments(arguments)
	if err != nil {
		return errorResult("invalid tool arguments: expected a JSON object")
	}

	created, err := s.service.Add(r.Context(), fields)
	if err != nil {
		var verr *specs.ValidationError
		if errors.As(err, &verr) {
			return errorResult(verr.Error())
		}
		if errors.Is(err, specs.ErrDuplicateSpec) {
			return errorResult(specs.ErrDuplicateSpec.Error())
		}
		s.logger.Error("add_parameter_spec failed", "request_id", requestID, "error", err)
		return errorResult("failed to store parameter spec")
	}

	text, err := json.MarshalIndent(created, "", "  ")
	if err != nil {
		return errorResult("failed to encode parameter spec")
	}
	return textResult(string(text))
}

// decodeArguments parses tool arguments into the engine's field mapping.
// Numbers are kept as json.Number so their decimal literals survive intact
// for exact rounding.
func decodeArguments(arguments json.RawMessage) (map[string]any, error) {
	raw := string(arguments)
	if raw == "" || raw == "null" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(arguments))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func textResult(text string) MCPCallToolResult {
	return MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: text}},
	}
}

func errorResult(message string) MCPCallToolResult {
	return MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: message}},
		IsError: true,
	}
}

// sendJSONRPCResult sends a successful JSON-RPC response.
func (s *Server) sendJSONRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendJSONRPCError sends a JSON-RPC error response.
func (s *Server) sendJSONRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string, data any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", err)
	}
}
