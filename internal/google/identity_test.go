package google

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientIdentity(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    ClientIdentity
		wantErr string
	}{
		{
			name: "installed wrapper",
			data: `{"installed":{"client_id":"id-1","client_secret":"s-1","redirect_uris":["http://localhost","urn:ietf:wg:oauth:2.0:oob"]}}`,
			want: ClientIdentity{ClientID: "id-1", ClientSecret: "s-1", RedirectURI: "http://localhost"},
		},
		{
			name: "web wrapper",
			data: `{"web":{"client_id":"id-2","client_secret":"s-2","redirect_uris":["https://example.com/cb"]}}`,
			want: ClientIdentity{ClientID: "id-2", ClientSecret: "s-2", RedirectURI: "https://example.com/cb"},
		},
		{
			name: "flat object",
			data: `{"client_id":"id-3","client_secret":"s-3","redirect_uris":["http://127.0.0.1"]}`,
			want: ClientIdentity{ClientID: "id-3", ClientSecret: "s-3", RedirectURI: "http://127.0.0.1"},
		},
		{
			name: "no redirect uris",
			data: `{"installed":{"client_id":"id-4","client_secret":"s-4"}}`,
			want: ClientIdentity{ClientID: "id-4", ClientSecret: "s-4"},
		},
		{
			name:    "missing client id",
			data:    `{"installed":{"client_secret":"s"}}`,
			wantErr: "client_id is missing",
		},
		{
			name:    "missing client secret",
			data:    `{"web":{"client_id":"id"}}`,
			wantErr: "client_secret is missing",
		},
		{
			name:    "invalid json",
			data:    `{`,
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClientIdentity("secret.json", []byte(tt.data))
			if tt.wantErr != "" {
				require.Error(t, err)
				var cfgErr *ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, "secret.json", cfgErr.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadClientIdentity_Missing(t *testing.T) {
	_, err := ReadClientIdentity(filepath.Join(t.TempDir(), "absent.json"))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadClientIdentity("")
	require.ErrorAs(t, err, &cfgErr)
}

func TestIdentityLoader_Caches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{"client_id":"first","client_secret":"s"}}`), 0600))

	loader := NewIdentityLoader(path)
	assert.Equal(t, path, loader.Path())

	first, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "first", first.ClientID)

	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{"client_id":"second","client_secret":"s"}}`), 0600))
	again, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "first", again.ClientID, "identity must not be re-read")

	require.NoError(t, os.Remove(path))
	again, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestOAuth2Config(t *testing.T) {
	scopes := []string{"a", "b"}
	conf := OAuth2Config(ClientIdentity{ClientID: "id", ClientSecret: "s", RedirectURI: "http://localhost"}, scopes)

	assert.Equal(t, "id", conf.ClientID)
	assert.Equal(t, "s", conf.ClientSecret)
	assert.Equal(t, "http://localhost", conf.RedirectURL)
	assert.Equal(t, scopes, conf.Scopes)
	assert.Contains(t, conf.Endpoint.TokenURL, "oauth2.googleapis.com")

	scopes[0] = "changed"
	assert.Equal(t, "a", conf.Scopes[0])
}
