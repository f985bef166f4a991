package credentials

import "context"

// Key is the storage key the access token lives under in every backend.
const Key = "access_token"

// Store persists the single live credential. Load returns errors.ErrNoCredential
// when nothing is stored; Delete on an empty store is not an error.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Delete(ctx context.Context) error
}
