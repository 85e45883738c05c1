package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"
)

const callbackPath = "/callback"

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>taskbridge</title></head>
<body>
{{if .Error}}<h1>Authorization failed</h1>
<p>{{.Error}}{{if .Description}}: {{.Description}}{{end}}</p>
{{else}}<h1>Authorization complete</h1>
<p>You can close this window and return to your terminal.</p>
{{end}}</body>
</html>
`))

// callbackResult is the query of the single redirect the server accepts.
type callbackResult struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// callbackServer is a one-shot HTTP server on the loopback interface that
// receives the authorization redirect.
type callbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan callbackResult
	errCh    chan error
	once     sync.Once
	stopOnce sync.Once
}

// newCallbackServer creates a server for port. Port 0 picks a free port.
func newCallbackServer(port int) *callbackServer {
	return &callbackServer{
		port:     port,
		resultCh: make(chan callbackResult, 1),
		errCh:    make(chan error, 1),
	}
}

// start listens on 127.0.0.1 and returns the redirect URI to register with
// the authorization request.
func (s *callbackServer) start() (string, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}
	s.listener = listener
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, s.handleCallback)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errCh <- err:
			default:
			}
		}
	}()

	return fmt.Sprintf("http://127.0.0.1:%d%s", s.port, callbackPath), nil
}

// wait blocks until the redirect arrives, the server fails or ctx ends.
func (s *callbackServer) wait(ctx context.Context) (callbackResult, error) {
	select {
	case res := <-s.resultCh:
		return res, nil
	case err := <-s.errCh:
		return callbackResult{}, err
	case <-ctx.Done():
		return callbackResult{}, fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}
}

func (s *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	handled := false
	s.once.Do(func() {
		handled = true
		s.process(w, r)
	})
	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func (s *callbackServer) process(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	query := r.URL.Query()
	res := callbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := callbackPage.Execute(w, map[string]string{
		"Error":       res.Error,
		"Description": res.ErrorDescription,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}

	s.resultCh <- res
}

// stop shuts the server down. It is safe to call more than once.
func (s *callbackServer) stop() {
	s.stopOnce.Do(func() {
		if s.server == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	})
}
