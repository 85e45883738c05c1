package credentials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		prev Credential
		next Credential
		want Credential
	}{
		{
			name: "missing refresh token falls back to previous",
			prev: Credential{AccessToken: "a1", RefreshToken: "r1"},
			next: Credential{AccessToken: "a2"},
			want: Credential{AccessToken: "a2", RefreshToken: "r1"},
		},
		{
			name: "new refresh token wins",
			prev: Credential{AccessToken: "a1", RefreshToken: "r1"},
			next: Credential{AccessToken: "a2", RefreshToken: "r2"},
			want: Credential{AccessToken: "a2", RefreshToken: "r2"},
		},
		{
			name: "empty previous",
			prev: Credential{},
			next: Credential{AccessToken: "a1", ExpiryDate: 42, TokenType: "Bearer"},
			want: Credential{AccessToken: "a1", ExpiryDate: 42, TokenType: "Bearer"},
		},
		{
			name: "present fields override",
			prev: Credential{AccessToken: "a1", RefreshToken: "r1", ExpiryDate: 1, Scope: "s1", TokenType: "Bearer"},
			next: Credential{AccessToken: "a2", ExpiryDate: 2, Scope: "s2"},
			want: Credential{AccessToken: "a2", RefreshToken: "r1", ExpiryDate: 2, Scope: "s2", TokenType: "Bearer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.prev, tt.next))
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	cred := Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiryDate:   expiry.UnixMilli(),
		Scope:        "https://www.googleapis.com/auth/tasks",
		TokenType:    "Bearer",
	}

	tok := cred.Token()
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))

	assert.Equal(t, cred, FromToken(tok))
}

func TestFromToken(t *testing.T) {
	assert.True(t, FromToken(nil).IsZero())

	tok := &oauth2.Token{AccessToken: "a"}
	cred := FromToken(tok)
	assert.Equal(t, "a", cred.AccessToken)
	assert.Zero(t, cred.ExpiryDate)
	assert.False(t, cred.HasRefreshToken())
	assert.True(t, cred.Expiry().IsZero())
}
