package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/store"
)

// NotificationStore implements store.NotificationStore on a DB.
type NotificationStore struct {
	db *DB
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore creates a NotificationStore backed by db.
func NewNotificationStore(db *DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create implements store.NotificationStore.
func (s *NotificationStore) Create(_ context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.notifications[n.ID]; ok {
		return store.ErrDuplicate
	}
	if !s.db.userExists(n.UserID) {
		return fmt.Errorf("%w: recipient not found", store.ErrInvalidEntity)
	}
	s.db.notifications[n.ID] = notificationRecord{n: cloneNotification(*n), seq: s.db.nextSeq()}
	return nil
}

// ListByUser implements store.NotificationStore.
func (s *NotificationStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	s.db.mu.RLock()
	recs := make([]notificationRecord, 0)
	for _, rec := range s.db.notifications {
		if rec.n.UserID == userID {
			recs = append(recs, rec)
		}
	}
	s.db.mu.RUnlock()

	sortNotifications(recs)
	out := make([]domain.Notification, 0, len(recs))
	for _, rec := range recs {
		out = append(out, cloneNotification(rec.n))
	}
	return out, nil
}

// MarkRead implements store.NotificationStore.
func (s *NotificationStore) MarkRead(_ context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.notifications[id]
	if !ok || rec.n.UserID != userID {
		return nil, store.ErrNotificationNotFound
	}
	rec.n.MarkRead(s.db.now())
	s.db.notifications[id] = rec

	n := cloneNotification(rec.n)
	return &n, nil
}

// MarkAllRead implements store.NotificationStore.
func (s *NotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.now()
	var count int64
	for id, rec := range s.db.notifications {
		if rec.n.UserID != userID || rec.n.IsRead {
			continue
		}
		rec.n.MarkRead(now)
		s.db.notifications[id] = rec
		count++
	}
	return count, nil
}

// Delete implements store.NotificationStore.
func (s *NotificationStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.notifications[id]
	if !ok || rec.n.UserID != userID {
		return store.ErrNotificationNotFound
	}
	delete(s.db.notifications, id)
	return nil
}
