package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ErrNotAuthorized is returned by Manager.Token when no credential has been
// loaded or obtained yet.
var ErrNotAuthorized = errors.New("authentication required: no credential available")

// ErrTokenExpired is returned by Manager.Token when the access token expired
// and there is no refresh token to renew it.
var ErrTokenExpired = errors.New("authentication required: access token expired and no refresh token is stored")

// authMessages are lower-case substrings that mark an error message as an
// authentication failure.
var authMessages = []string{
	"invalid_grant",
	"invalid_credentials",
	"unauthorized",
	"authentication",
	"invalid token",
}

// authCodes are structured status codes that mark an authentication failure.
var authCodes = []string{
	"UNAUTHENTICATED",
	"PERMISSION_DENIED",
}

// RemoteError is the normalized shape of a failed remote call. Every error
// surfacing from the Tasks API or the token endpoint maps into it.
type RemoteError struct {
	HTTPStatus int
	Code       string
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("remote error %d: %s", e.HTTPStatus, e.Message)
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsAuth reports whether the failure was caused by a missing, expired or
// rejected credential.
func (e *RemoteError) IsAuth() bool {
	if e == nil {
		return false
	}
	if e.HTTPStatus == http.StatusUnauthorized || e.HTTPStatus == http.StatusForbidden {
		return true
	}
	msg := strings.ToLower(e.Message)
	for _, m := range authMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	for _, c := range authCodes {
		if e.Code == c {
			return true
		}
	}
	return false
}

// statusCoder is implemented by errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Normalize maps err into a RemoteError. It returns nil for a nil error.
// The message is always the full text of err so that context added by
// wrapping is taken into account.
func Normalize(err error) *RemoteError {
	if err == nil {
		return nil
	}

	var existing *RemoteError
	if errors.As(err, &existing) {
		return existing
	}

	norm := &RemoteError{Message: err.Error(), Err: err}

	var gerr *googleapi.Error
	var rerr *oauth2.RetrieveError
	var sc statusCoder
	switch {
	case errors.As(err, &gerr):
		norm.HTTPStatus = gerr.Code
		norm.Code = googleStatus(gerr)
	case errors.As(err, &rerr):
		if rerr.Response != nil {
			norm.HTTPStatus = rerr.Response.StatusCode
		}
		norm.Code = rerr.ErrorCode
	case errors.As(err, &sc):
		norm.HTTPStatus = sc.StatusCode()
	}
	return norm
}

// IsAuthError reports whether err is classified as an authentication failure.
func IsAuthError(err error) bool {
	return Normalize(err).IsAuth()
}

// googleStatus extracts the canonical status ("UNAUTHENTICATED", ...) from a
// Google API error body, falling back to the first error reason.
func googleStatus(gerr *googleapi.Error) string {
	if gerr.Body != "" {
		var payload struct {
			Error struct {
				Status string `json:"status"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(gerr.Body), &payload); err == nil && payload.Error.Status != "" {
			return payload.Error.Status
		}
	}
	if len(gerr.Errors) > 0 {
		return gerr.Errors[0].Reason
	}
	return ""
}
