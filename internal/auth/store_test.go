package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrack/tasktrack/internal/shared"
	"github.com/tasktrack/tasktrack/internal/users"
)

// memStore is an in-memory Repository used across the package tests.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*users.User
	findErr  error
	touchErr error
	touches  []time.Time
}

func newMemStore(seed ...users.User) *memStore {
	s := &memStore{users: make(map[string]*users.User)}
	for i := range seed {
		u := seed[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *memStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return s.touchErr
	}
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.LastActiveAt = at
	s.touches = append(s.touches, at)
	return nil
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *memStore) Create(ctx context.Context, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return shared.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) lastActive(id string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].LastActiveAt
}

var errStoreDown = errors.New("connection refused")

// fixedClock returns a clock pinned to *at.
func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}
