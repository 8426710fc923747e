package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
)

// DB holds every entity kept in memory.
type DB struct {
	mu            sync.RWMutex
	seq           uint64
	users         map[uuid.UUID]userRecord
	tasks         map[uuid.UUID]taskRecord
	notifications map[uuid.UUID]notificationRecord
	now           func() time.Time
}

type userRecord struct {
	user domain.User
	seq  uint64
}

type taskRecord struct {
	task domain.Task
	seq  uint64
}

type notificationRecord struct {
	n   domain.Notification
	seq uint64
}

// NewDB creates an empty DB.
func NewDB() *DB {
	return &DB{
		users:         make(map[uuid.UUID]userRecord),
		tasks:         make(map[uuid.UUID]taskRecord),
		notifications: make(map[uuid.UUID]notificationRecord),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// nextSeq must be called with mu held for writing.
func (db *DB) nextSeq() uint64 {
	db.seq++
	return db.seq
}

func (db *DB) userExists(id uuid.UUID) bool {
	_, ok := db.users[id]
	return ok
}

// newestFirst orders by creation time, then by insertion order.
func newestFirst(createdAt func(i int) time.Time, seq func(i int) uint64) func(i, j int) bool {
	return func(i, j int) bool {
		if !createdAt(i).Equal(createdAt(j)) {
			return createdAt(i).After(createdAt(j))
		}
		return seq(i) > seq(j)
	}
}

func sortTasks(recs []taskRecord) {
	sort.SliceStable(recs, newestFirst(
		func(i int) time.Time { return recs[i].task.CreatedAt },
		func(i int) uint64 { return recs[i].seq },
	))
}

func sortNotifications(recs []notificationRecord) {
	sort.SliceStable(recs, newestFirst(
		func(i int) time.Time { return recs[i].n.CreatedAt },
		func(i int) uint64 { return recs[i].seq },
	))
}

func cloneTask(t domain.Task) domain.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	if t.AssignedTo != nil {
		id := *t.AssignedTo
		t.AssignedTo = &id
	}
	return t
}

func cloneNotification(n domain.Notification) domain.Notification {
	if n.TaskID != nil {
		id := *n.TaskID
		n.TaskID = &id
	}
	return n
}
