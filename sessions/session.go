package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-blog-client/credentials"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Reader is the read side of the session that guards and UI code consume.
type Reader interface {
	// User returns a copy of the signed-in user, nil when unauthenticated
	User() *users.User

	// Authenticated reports whether a user is signed in
	Authenticated() bool
}

// Context pairs the persisted credential with the in-memory signed-in user.
// One Context is shared by every client built for the same account.
type Context struct {
	store     credentials.Store
	user      *users.User
	updatedAt time.Time
	lock      sync.RWMutex
}

var _ Reader = (*Context)(nil)

func New(store credentials.Store) *Context {
	return &Context{store: store}
}

// Credential returns the stored bearer token, or "" when none is stored.
func (c *Context) Credential(ctx context.Context) (string, error) {
	credential, err := c.store.Load(ctx)
	if errors.Is(err, errors.ErrNoCredential) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("[sessions Credential] load: %w", err)
	}
	return credential, nil
}

// SetCredential persists a newly issued credential
func (c *Context) SetCredential(ctx context.Context, credential string) error {
	if err := c.store.Save(ctx, credential); err != nil {
		return fmt.Errorf("[sessions SetCredential] save: %w", err)
	}
	return nil
}

func (c *Context) User() *users.User {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.user.Clone()
}

func (c *Context) Authenticated() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.user != nil
}

// UpdatedAt is when the session user was last replaced or cleared
func (c *Context) UpdatedAt() time.Time {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.updatedAt
}

// SetUser replaces the session user wholesale. A nil user clears it.
func (c *Context) SetUser(user *users.User) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.user = user.Clone()
	c.updatedAt = NowTimeFunc()
}

// Establish stores the credential and then the user, as after a login.
func (c *Context) Establish(ctx context.Context, credential string, user *users.User) error {
	if err := c.SetCredential(ctx, credential); err != nil {
		return err
	}
	c.SetUser(user)
	return nil
}

// Clear tears the session down: credential storage first, then the in-memory user.
// The user is cleared even if storage fails so the process never keeps a
// half signed-in state.
func (c *Context) Clear(ctx context.Context) error {
	storeErr := c.store.Delete(ctx)
	c.SetUser(nil)
	if storeErr != nil {
		return fmt.Errorf("[sessions Clear] delete credential: %w", storeErr)
	}
	return nil
}
