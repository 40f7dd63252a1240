package storage

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/MayaraRocha95/todo-list-hp/domain"
)

// DefaultKey is the slot the task list has always been stored under.
const DefaultKey = "harry-potter-tarefas"

// Bridge mirrors the task collection into a single KV slot as one snapshot.
type Bridge struct {
	kv  KV
	key string
	log log.FieldLogger
}

// NewBridge creates a Bridge writing to key. An empty key selects DefaultKey.
func NewBridge(kv KV, key string, logger log.FieldLogger) *Bridge {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bridge{kv: kv, key: key, log: logger}
}

// Load reads the snapshot. A missing, unreadable or corrupt snapshot yields
// an empty collection.
func (b *Bridge) Load(ctx context.Context) []domain.Task {
	data, err := b.kv.Get(ctx, b.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.log.WithError(err).WithField("key", b.key).Warn("unable to read tasks, starting empty")
		}
		return []domain.Task{}
	}
	tasks, err := decodeTasks(data)
	if err != nil {
		b.log.WithError(err).WithField("key", b.key).Warn("discarding corrupt tasks snapshot")
		return []domain.Task{}
	}
	return tasks
}

// Save overwrites the snapshot with tasks.
func (b *Bridge) Save(ctx context.Context, tasks []domain.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := b.kv.Set(ctx, b.key, data); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}
