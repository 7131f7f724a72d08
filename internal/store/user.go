package store

import "sync"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserStore holds the profile of the current user.
type UserStore struct {
	lock sync.RWMutex
	user User
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) Get() User {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.user
}

// Patch overwrites the fields of the profile that are non-empty in patch.
func (s *UserStore) Patch(patch User) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if patch.ID != "" {
		s.user.ID = patch.ID
	}
	if patch.Email != "" {
		s.user.Email = patch.Email
	}
}

func (s *UserStore) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.user = User{}
}

// Loaded reports whether any profile information is present.
func (s *UserStore) Loaded() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.user.ID != "" || s.user.Email != ""
}
