package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ClientIdentity is the OAuth client registration used for every token
// request. It is immutable once loaded.
type ClientIdentity struct {
	ClientID     string
	ClientSecret string
	// RedirectURI is the first entry of redirect_uris, empty if none is listed.
	RedirectURI string
}

// ConfigurationError reports a missing or malformed client identity file.
// Without an identity no remote call is possible, so callers treat it as fatal.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client identity %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("client identity %s: %s", e.Path, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type identityFields struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
}

type identityFile struct {
	identityFields
	Installed *identityFields `json:"installed"`
	Web       *identityFields `json:"web"`
}

// ParseClientIdentity extracts the identity from the content of a client
// secret file. path is only used for error messages.
func ParseClientIdentity(path string, data []byte) (ClientIdentity, error) {
	var f identityFile
	if err := json.Unmarshal(data, &f); err != nil {
		return ClientIdentity{}, &ConfigurationError{Path: path, Reason: "invalid JSON", Err: err}
	}

	fields := f.identityFields
	switch {
	case f.Installed != nil:
		fields = *f.Installed
	case f.Web != nil:
		fields = *f.Web
	}

	if fields.ClientID == "" {
		return ClientIdentity{}, &ConfigurationError{Path: path, Reason: "client_id is missing"}
	}
	if fields.ClientSecret == "" {
		return ClientIdentity{}, &ConfigurationError{Path: path, Reason: "client_secret is missing"}
	}

	id := ClientIdentity{
		ClientID:     fields.ClientID,
		ClientSecret: fields.ClientSecret,
	}
	if len(fields.RedirectURIs) > 0 {
		id.RedirectURI = fields.RedirectURIs[0]
	}
	return id, nil
}

// ReadClientIdentity reads and parses the client secret file at path.
func ReadClientIdentity(path string) (ClientIdentity, error) {
	if path == "" {
		return ClientIdentity{}, &ConfigurationError{Path: "<unset>", Reason: "no client secret file configured"}
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ClientIdentity{}, &ConfigurationError{Path: path, Reason: "file not found", Err: err}
	}
	if err != nil {
		return ClientIdentity{}, &ConfigurationError{Path: path, Reason: "unreadable", Err: err}
	}
	return ParseClientIdentity(path, data)
}

// IdentityLoader reads the client identity file at most once.
type IdentityLoader struct {
	path string
	load func() (ClientIdentity, error)
}

// NewIdentityLoader returns a loader for the client secret file at path.
// Nothing is read until the first call to Load.
func NewIdentityLoader(path string) *IdentityLoader {
	return &IdentityLoader{
		path: path,
		load: sync.OnceValues(func() (ClientIdentity, error) {
			return ReadClientIdentity(path)
		}),
	}
}

// Load returns the cached identity, reading the file on first use. A failed
// first read is cached as well; re-resolution requires a restart.
func (l *IdentityLoader) Load() (ClientIdentity, error) {
	return l.load()
}

// Path returns the client secret file path.
func (l *IdentityLoader) Path() string {
	return l.path
}

// OAuth2Config builds the oauth2 configuration for id against Google's
// endpoints.
func OAuth2Config(id ClientIdentity, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     id.ClientID,
		ClientSecret: id.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  id.RedirectURI,
		Scopes:       append([]string(nil), scopes...),
	}
}
