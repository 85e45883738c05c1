package credentials

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when nothing has been stored yet.
var ErrNotFound = errors.New("credential not found")

// Backend reads and writes the raw serialized credential.
type Backend interface {
	// Read returns the stored bytes, or ErrNotFound when nothing is stored.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored bytes. Readers never observe a partial write.
	Write(ctx context.Context, data []byte) error

	// Location describes where the credential lives, for log and status output.
	Location() string
}
