package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/taskbridge/internal/credentials"
	"github.com/teemow/taskbridge/internal/google"
	"github.com/teemow/taskbridge/internal/logging"
)

// DefaultAuthorizationTimeout bounds how long the user has to complete consent.
const DefaultAuthorizationTimeout = 10 * time.Minute

// LoopbackAuthorizer runs the installed-application flow: it serves the
// redirect on 127.0.0.1, directs the user to Google's consent page and
// exchanges the authorization code using PKCE.
type LoopbackAuthorizer struct {
	// Port for the callback server. 0 picks a free port.
	Port int
	// OpenBrowser opens the consent page automatically when true.
	OpenBrowser bool
	// Out receives the consent URL. Defaults to os.Stderr; stdout carries
	// the MCP protocol in stdio mode.
	Out     io.Writer
	Timeout time.Duration
	Logger  *slog.Logger

	// HTTPClient is used for the code exchange.
	HTTPClient *http.Client
	// Endpoint overrides Google's OAuth endpoints.
	Endpoint *oauth2.Endpoint

	openURL func(string) error
}

var _ Authorizer = (*LoopbackAuthorizer)(nil)

// Authorize implements Authorizer.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, identityPath string, scopes []string) (credentials.Credential, error) {
	id, err := google.ReadClientIdentity(identityPath)
	if err != nil {
		return credentials.Credential{}, err
	}
	conf := google.OAuth2Config(id, scopes)
	if a.Endpoint != nil {
		conf.Endpoint = *a.Endpoint
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthorizationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	srv := newCallbackServer(a.Port)
	redirectURI, err := srv.start()
	if err != nil {
		return credentials.Credential{}, err
	}
	defer srv.stop()
	conf.RedirectURL = redirectURI

	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)

	a.prompt(authURL)

	res, err := srv.wait(ctx)
	if err != nil {
		return credentials.Credential{}, err
	}
	if res.Error != "" {
		if res.ErrorDescription != "" {
			return credentials.Credential{}, fmt.Errorf("authorization denied: %s: %s", res.Error, res.ErrorDescription)
		}
		return credentials.Credential{}, fmt.Errorf("authorization denied: %s", res.Error)
	}
	if res.State != state {
		return credentials.Credential{}, errors.New("authorization response state mismatch")
	}
	if res.Code == "" {
		return credentials.Credential{}, errors.New("authorization response carries no code")
	}

	exchangeCtx := ctx
	if a.HTTPClient != nil {
		exchangeCtx = context.WithValue(ctx, oauth2.HTTPClient, a.HTTPClient)
	}
	tok, err := conf.Exchange(exchangeCtx, res.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		return credentials.Credential{}, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return credentials.FromToken(tok), nil
}

func (a *LoopbackAuthorizer) prompt(authURL string) {
	out := a.Out
	if out == nil {
		out = os.Stderr
	}
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	_, _ = fmt.Fprintf(out, "\nAuthorize taskbridge to access Google Tasks by visiting:\n\n  %s\n\n", authURL)

	if !a.OpenBrowser && a.openURL == nil {
		return
	}
	open := a.openURL
	if open == nil {
		open = OpenBrowser
	}
	if err := open(authURL); err != nil {
		logger.Warn("could not open browser, use the URL printed above", logging.Err(err))
	}
}
