package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/taskbridge/internal/server"
)

const (
	// SessionURI exposes the authorization state of the server.
	SessionURI = "taskbridge://session"
	// OperationsURI lists the Tasks operations the dispatcher accepts.
	OperationsURI = "taskbridge://operations"
)

// RegisterSessionResources registers the session resources.
func RegisterSessionResources(s *mcpserver.MCPServer, sc *server.ServerContext) {
	sessionResource := mcp.NewResource(
		SessionURI,
		"Session State",
		mcp.WithResourceDescription("Whether a Google credential is loaded and whether the server is read-only"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(sessionResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSession(request, sc)
	})

	operationsResource := mcp.NewResource(
		OperationsURI,
		"Tasks Operations",
		mcp.WithResourceDescription("Google Tasks operations available to this session"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(operationsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleOperations(request, sc)
	})
}

type sessionState struct {
	Authorized bool `json:"authorized"`
	ReadOnly   bool `json:"read_only"`
	Operations int  `json:"operations"`
}

func handleSession(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	state := sessionState{
		Authorized: sc.Authorized(),
		ReadOnly:   sc.ReadOnly(),
		Operations: len(sc.Dispatcher().Registry().Definitions()),
	}
	return jsonContents(request.Params.URI, state)
}

type operationInfo struct {
	Name     string   `json:"name"`
	Tool     string   `json:"tool"`
	Required []string `json:"required,omitempty"`
	Body     bool     `json:"body"`
	ReadOnly bool     `json:"read_only"`
}

func handleOperations(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	defs := sc.Dispatcher().Registry().Definitions()
	ops := make([]operationInfo, 0, len(defs))
	for _, def := range defs {
		ops = append(ops, operationInfo{
			Name:     def.Name(),
			Tool:     def.ToolName(),
			Required: def.RequiredParams(),
			Body:     def.UsesBody,
			ReadOnly: def.ReadOnly,
		})
	}
	return jsonContents(request.Params.URI, ops)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
