package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
)

// UserStore implements store.UserStore on a DB.
type UserStore struct {
	db *DB
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore backed by db.
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create implements store.UserStore.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.userExists(user.ID) {
		return store.ErrDuplicate
	}
	email := domain.NormalizeEmail(user.Email)
	for _, rec := range s.db.users {
		if domain.NormalizeEmail(rec.user.Email) == email {
			return store.ErrEmailExists
		}
	}
	s.db.users[user.ID] = userRecord{user: *user, seq: s.db.nextSeq()}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	u := rec.user
	return &u, nil
}

// GetByEmail implements store.UserStore.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, rec := range s.db.users {
		if domain.NormalizeEmail(rec.user.Email) == email {
			u := rec.user
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetSummaries implements store.UserStore.
func (s *UserStore) GetSummaries(
	_ context.Context,
	ids []uuid.UUID,
) (map[uuid.UUID]domain.UserSummary, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := make(map[uuid.UUID]domain.UserSummary, len(ids))
	for _, id := range ids {
		if rec, ok := s.db.users[id]; ok {
			out[id] = rec.user.Summary()
		}
	}
	return out, nil
}
