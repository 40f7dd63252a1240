package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/MayaraRocha95/todo-list-hp/config"
	"github.com/MayaraRocha95/todo-list-hp/domain"
	"github.com/MayaraRocha95/todo-list-hp/notify"
	"github.com/MayaraRocha95/todo-list-hp/storage"
)

// app holds the components wired from one configuration.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *domain.Store
	broker *notify.Broker
	queue  *notify.Queue
	tables *storage.Tables

	closers []func() error
}

// newApp builds the storage backend and notifiers described by cfg and loads
// the persisted tasks. extra receives every notification as well.
func newApp(ctx context.Context, cfg config.Config, logger *log.Logger, extra domain.Notifier) (*app, error) {
	a := &app{cfg: cfg, logger: logger, broker: notify.NewBroker()}

	var rc *redis.Client
	if cfg.Storage.RedisURL != "" {
		rc = redis.NewClient(storage.RedisOptions(cfg.Storage.RedisURL))
		a.closers = append(a.closers, rc.Close)
	}

	kv, err := a.openKV(ctx, rc)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifiers := notify.Multi{notify.NewLogger(logger), a.broker, extra}
	if cfg.Notify.Channel != "" && rc != nil {
		notifiers = append(notifiers, notify.NewRedis(rc, cfg.Notify.Channel, logger))
	}
	if cfg.Notify.Queue != "" {
		q, err := notify.NewQueue(cfg.Storage.ConnectionString, cfg.Notify.Queue, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("queue notifier: %w", err)
		}
		a.queue = q
		notifiers = append(notifiers, q)
	}

	bridge := storage.NewBridge(kv, cfg.Storage.Key, logger)
	a.store = domain.NewStore(bridge, notifiers, domain.WithLogger(logger))
	n := a.store.Load(ctx)
	logger.WithFields(log.Fields{
		"driver": cfg.Storage.Driver,
		"key":    cfg.Storage.Key,
		"tasks":  n,
	}).Debug("tasks loaded")
	return a, nil
}

func (a *app) openKV(ctx context.Context, rc *redis.Client) (storage.KV, error) {
	st := a.cfg.Storage
	var base storage.KV
	switch st.Driver {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverRedis:
		if rc == nil {
			return nil, errors.New("redis driver without redis url")
		}
		return storage.NewRedis(rc, ""), nil
	case config.DriverSQLite:
		db, err := storage.OpenSQLite(st.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		base = db
	case config.DriverTables:
		t, err := storage.NewTables(st.ConnectionString, st.Table)
		if err != nil {
			return nil, fmt.Errorf("tables: %w", err)
		}
		a.tables = t
		base = t
	default:
		return nil, fmt.Errorf("unknown storage driver %q", st.Driver)
	}
	if st.CacheTTL > 0 && rc != nil {
		return storage.NewCache(base, rc, st.CacheTTL), nil
	}
	return base, nil
}

// Close releases backend connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WithError(err).Warn("close failed")
		}
	}
	a.closers = nil
}

// printer writes notifications to the terminal for CLI commands.
func printer(w io.Writer) domain.Notifier {
	return domain.NotifierFunc(func(_ context.Context, n domain.Notification) {
		fmt.Fprintf(w, "%s %s\n", n.Title, n.Detail)
	})
}
