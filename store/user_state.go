package store

import (
	"slices"
	"sync"

	"github.com/jrsteele09/go-blog-client/users"
)

// UserState is the admin listing of accounts
type UserState struct {
	lock  sync.RWMutex
	items []*users.User
}

func NewUserState() *UserState {
	return &UserState{}
}

func (s *UserState) Items() []*users.User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return cloneAll(s.items)
}

func (s *UserState) ApplyList(list []*users.User) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.items = cloneAll(list)
}

// ApplyUpdated replaces a listed user; unknown users are ignored
func (s *UserState) ApplyUpdated(u *users.User) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if i := slices.IndexFunc(s.items, func(x *users.User) bool { return x.ID == u.ID }); i >= 0 {
		s.items[i] = u.Clone()
	}
}
