package credentials

import (
	"time"

	"golang.org/x/oauth2"
)

// Credential is the persisted token bundle. The JSON shape matches the
// credential files written by Google's client libraries, so an existing
// token file can be reused as is.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	// ExpiryDate is the access token expiry in Unix milliseconds.
	ExpiryDate int64  `json:"expiry_date,omitempty"`
	Scope      string `json:"scope,omitempty"`
	TokenType  string `json:"token_type,omitempty"`
}

// Expiry returns the access token expiry, or the zero time when unknown.
func (c Credential) Expiry() time.Time {
	if c.ExpiryDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.ExpiryDate)
}

// HasRefreshToken reports whether the credential can be refreshed without
// user interaction.
func (c Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// IsZero reports whether no field is set.
func (c Credential) IsZero() bool {
	return c == Credential{}
}

// Token converts the credential into an oauth2.Token.
func (c Credential) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry(),
	}
	if c.Scope != "" {
		tok = tok.WithExtra(map[string]interface{}{"scope": c.Scope})
	}
	return tok
}

// FromToken converts an oauth2.Token into a Credential. The scope is taken
// from the token response extras when the server returned one.
func FromToken(tok *oauth2.Token) Credential {
	if tok == nil {
		return Credential{}
	}
	c := Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		c.ExpiryDate = tok.Expiry.UnixMilli()
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		c.Scope = scope
	}
	return c
}

// Merge overlays next onto prev field by field. Fields that next leaves empty
// keep the value from prev; in particular a next without a refresh token keeps
// prev's refresh token.
func Merge(prev, next Credential) Credential {
	merged := prev
	if next.AccessToken != "" {
		merged.AccessToken = next.AccessToken
	}
	if next.RefreshToken != "" {
		merged.RefreshToken = next.RefreshToken
	}
	if next.ExpiryDate != 0 {
		merged.ExpiryDate = next.ExpiryDate
	}
	if next.Scope != "" {
		merged.Scope = next.Scope
	}
	if next.TokenType != "" {
		merged.TokenType = next.TokenType
	}
	return merged
}
