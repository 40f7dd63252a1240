package domain

import (
	"context"
	"errors"
	"time"
)

type fakePersister struct {
	loaded  []Task
	saved   [][]Task
	saveErr error
}

func (f *fakePersister) Load(context.Context) []Task {
	return append([]Task(nil), f.loaded...)
}

func (f *fakePersister) Save(_ context.Context, tasks []Task) error {
	f.saved = append(f.saved, tasks)
	return f.saveErr
}

func (f *fakePersister) last() []Task {
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

type recordingNotifier struct {
	got []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.got = append(r.got, n)
}

func (r *recordingNotifier) count(kind NotificationKind) int {
	n := 0
	for _, got := range r.got {
		if got.Kind == kind {
			n++
		}
	}
	return n
}

var errDiskFull = errors.New("disk full")

// fixedClock returns the same instant on every call.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func newTestStore(p *fakePersister, n *recordingNotifier) *Store {
	return NewStore(p, n, WithClock(fixedClock(1_700_000_000_000)))
}
