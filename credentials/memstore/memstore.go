package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-blog-client/credentials"
	"github.com/jrsteele09/go-blog-client/internal/errors"
)

var _ credentials.Store = (*MemStore)(nil)

// MemStore keeps the credential in process memory. Used by tests and by
// short-lived CLI invocations that should not persist anything.
type MemStore struct {
	credential string
	lock       sync.RWMutex
}

func New() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Load(_ context.Context) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.credential == "" {
		return "", errors.ErrNoCredential
	}
	return s.credential, nil
}

func (s *MemStore) Save(_ context.Context, credential string) error {
	if credential == "" {
		return errors.Wrapf(errors.ErrInvalidCredential, "memstore save")
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	s.credential = credential
	return nil
}

func (s *MemStore) Delete(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.credential = ""
	return nil
}
