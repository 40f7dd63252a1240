package storage

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisGetSet(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()
	kv := NewRedis(client, "todo:")

	if _, err := kv.Get(ctx, "tasks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := kv.Set(ctx, "tasks", []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mr.Get("todo:tasks")
	if err != nil || got != "[]" {
		t.Fatalf("unexpected raw value %q: %v", got, err)
	}
	if ttl := mr.TTL("todo:tasks"); ttl != 0 {
		t.Fatalf("snapshot must not expire, ttl=%v", ttl)
	}
	data, err := kv.Get(ctx, "tasks")
	if err != nil || string(data) != "[]" {
		t.Fatalf("unexpected value %q: %v", data, err)
	}
}

func TestRedisGetPropagatesErrors(t *testing.T) {
	mr, client := newMiniredis(t)
	kv := NewRedis(client, "")
	mr.SetError("ERR backend unavailable")

	if _, err := kv.Get(context.Background(), "tasks"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts := RedisOptions("redis://:secret@localhost:6380/2")
	if opts.Addr != "localhost:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("unexpected url options: %#v", opts)
	}

	opts = RedisOptions("cache.example.net:6380,password=pw,ssl=True,abortConnect=False")
	if opts.Addr != "cache.example.net:6380" || opts.Password != "pw" || opts.TLSConfig == nil {
		t.Fatalf("unexpected connection string options: %#v", opts)
	}

	opts = RedisOptions("localhost:6379")
	if opts.Addr != "localhost:6379" || opts.TLSConfig != nil {
		t.Fatalf("unexpected plain options: %#v", opts)
	}
}
