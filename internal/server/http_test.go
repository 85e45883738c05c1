package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
)

func TestHTTPServer_Routes(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("taskbridge-test", "0.0.0", mcpserver.WithToolCapabilities(true))
	sc := newTestServerContext(t, Options{Credentials: &fakeCredentials{authorized: true}})
	srv := NewHTTPServer(mcpSrv, "127.0.0.1:0", NewHealthChecker(sc), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	req := httptest.NewRequest(http.MethodPost, MCPEndpointPath, strings.NewReader(initialize))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskbridge-test")
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}
