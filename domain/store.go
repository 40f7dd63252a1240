package domain

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Persister mirrors the collection to durable storage.
type Persister interface {
	// Load returns the persisted collection, or an empty one when nothing
	// usable is stored.
	Load(ctx context.Context) []Task
	// Save overwrites the persisted collection with tasks.
	Save(ctx context.Context, tasks []Task) error
}

// Store owns the task collection and is its only mutation surface.
//
// A Store is not safe for concurrent use; callers serialize access.
type Store struct {
	persister Persister
	notifier  Notifier
	log       log.FieldLogger
	ids       idSource

	tasks   []Task
	editing *EditState
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used to assign ids.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.ids.now = now
		}
	}
}

// WithLogger sets the logger used for swallowed persistence failures.
func WithLogger(l log.FieldLogger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates an empty Store. Call Load to rehydrate persisted tasks.
func NewStore(p Persister, n Notifier, opts ...StoreOption) *Store {
	if p == nil {
		panic("domain.NewStore: persister is nil")
	}
	if n == nil {
		n = discardNotifier{}
	}
	s := &Store{
		persister: p,
		notifier:  n,
		log:       log.StandardLogger(),
		ids:       idSource{now: time.Now},
		tasks:     []Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one and returns the number
// of tasks kept. Records breaking an invariant are dropped.
func (s *Store) Load(ctx context.Context) int {
	loaded := s.persister.Load(ctx)
	s.tasks = make([]Task, 0, len(loaded))
	s.editing = nil

	seen := make(map[int64]struct{}, len(loaded))
	for _, t := range loaded {
		if err := t.Validate(); err != nil {
			s.log.WithError(err).WithField("task_id", t.ID).Warn("dropping invalid persisted task")
			continue
		}
		if _, dup := seen[t.ID]; dup {
			s.log.WithField("task_id", t.ID).Warn("dropping duplicate persisted task")
			continue
		}
		seen[t.ID] = struct{}{}
		s.ids.observe(t.ID)
		s.tasks = append(s.tasks, t)
	}
	return len(s.tasks)
}

// Create appends a new pending task. Blank text or an unknown category leaves
// the collection untouched and returns false.
func (s *Store) Create(ctx context.Context, text string, category Category) (Task, bool) {
	if isBlank(text) || !category.Valid() {
		return Task{}, false
	}
	t := Task{ID: s.ids.next(), Text: text, Category: category}
	s.tasks = append(s.tasks, t)
	s.persist(ctx, "create", t.ID)
	s.notifier.Notify(ctx, addedNotification(text))
	return t, true
}

// ToggleCompletion flips the completed flag of the task with the given id.
// Only completing a task is celebrated with a notification.
func (s *Store) ToggleCompletion(ctx context.Context, id int64) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	s.persist(ctx, "toggle", id)
	if t.Completed {
		s.notifier.Notify(ctx, completedNotification())
	}
	return t, true
}

// Delete removes the task with the given id. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id int64) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persist(ctx, "delete", id)
	s.notifier.Notify(ctx, removedNotification(removed.Text))
	return removed, true
}

// BeginEdit captures the task into the edit slot, discarding any edit in progress.
func (s *Store) BeginEdit(id int64) (EditState, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return EditState{}, false
	}
	s.editing = &EditState{TaskID: id, Text: s.tasks[i].Text}
	return *s.editing, true
}

// Editing returns the active edit slot, if any.
func (s *Store) Editing() (EditState, bool) {
	if s.editing == nil {
		return EditState{}, false
	}
	return *s.editing, true
}

// CommitEdit replaces the text of the task held by the edit slot. Without an
// active slot, or with blank text, nothing changes and the slot is kept.
func (s *Store) CommitEdit(ctx context.Context, newText string) (Task, bool) {
	if s.editing == nil || isBlank(newText) {
		return Task{}, false
	}
	id := s.editing.TaskID
	s.editing = nil

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	s.tasks[i].Text = newText
	t := s.tasks[i]
	s.persist(ctx, "edit", id)
	s.notifier.Notify(ctx, updatedNotification())
	return t, true
}

// CancelEdit clears the edit slot.
func (s *Store) CancelEdit() {
	s.editing = nil
}

// Task looks up a task by id.
func (s *Store) Task(id int64) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) indexOf(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes a snapshot. Failures are logged and the in-memory state stands.
func (s *Store) persist(ctx context.Context, op string, id int64) {
	if err := s.persister.Save(ctx, s.All()); err != nil {
		s.log.WithError(err).WithFields(log.Fields{
			"op":      op,
			"task_id": id,
		}).Error("failed to persist tasks")
	}
}
