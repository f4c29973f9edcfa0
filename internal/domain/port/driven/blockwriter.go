package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// ErrAuthExpired is returned by BlockWriter and AccountResolver when the
// service rejects the bearer token.
var ErrAuthExpired = errors.New("credential expired")

// BlockWriter defines the driven port for the collection-write API.
// It is intentionally separate from AccountResolver (read operation).
type BlockWriter interface {
	// BlockArtist bans one artist for the credential's account. A nil error
	// means the write was accepted.
	BlockArtist(ctx context.Context, cred model.Credential, artistID string) error
}

// AccountResolver derives the account identifier that scopes writes from a
// captured bearer token.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, token string) (string, error)
}
