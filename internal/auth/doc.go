// Package auth owns the OAuth credential lifecycle for the single Google
// identity a taskbridge process acts as.
//
// Manager holds the client identity and the current credential, refreshes
// expired access tokens, runs interactive authorization when refreshing is
// impossible, and persists every new credential through a credentials.Store.
// It implements oauth2.TokenSource so the Google API client can use it
// directly.
//
// Executor wraps a remote call and repairs authentication at most once:
// when the call fails with an error that Normalize classifies as an auth
// failure, it refreshes (or, failing that, reauthorizes) and retries a single
// time. Any other failure is returned unchanged.
//
// LoopbackAuthorizer is the interactive flow: it serves a one-shot callback on
// 127.0.0.1, sends the user to Google's consent page and exchanges the
// returned code (with PKCE) for a credential.
package auth
