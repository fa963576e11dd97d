// Package storage provides save-slot backends for the session layer.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jit-rpg/engine/pkg/session"
)

// ErrNotFound is returned when a save slot does not exist.
var ErrNotFound = errors.New("save slot not found")

const saveKeyPrefix = "save:"

// saveRecord is the wire envelope for one slot: listing metadata plus
// the full snapshot.
type saveRecord struct {
	Meta     session.SaveMeta  `json:"meta"`
	Snapshot *session.Snapshot `json:"snapshot"`
}

// RedisStore keeps save slots in Redis as JSON envelopes.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ session.SaveStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed save store.
func NewRedisStore(addr string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

func (r *RedisStore) Save(ctx context.Context, slot string, snap *session.Snapshot) error {
	rec := saveRecord{
		Meta:     metaFor(slot, snap),
		Snapshot: snap,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal save", "slot", slot, "error", err)
		return fmt.Errorf("failed to marshal save: %w", err)
	}

	if err := r.client.Set(ctx, saveKeyPrefix+slot, data, 0).Err(); err != nil {
		r.logger.Error("Failed to write save", "slot", slot, "error", err)
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, slot string) (*session.Snapshot, error) {
	data, err := r.client.Get(ctx, saveKeyPrefix+slot).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("slot %q: %w", slot, ErrNotFound)
		}
		r.logger.Error("Failed to read save", "slot", slot, "error", err)
		return nil, fmt.Errorf("failed to read save: %w", err)
	}

	var rec saveRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal save", "slot", slot, "error", err)
		return nil, fmt.Errorf("failed to unmarshal save: %w", err)
	}
	if rec.Snapshot == nil {
		return nil, fmt.Errorf("slot %q: %w", slot, ErrNotFound)
	}
	return rec.Snapshot, nil
}

func (r *RedisStore) List(ctx context.Context) ([]session.SaveMeta, error) {
	keys, err := r.client.Keys(ctx, saveKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	metas := make([]session.SaveMeta, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue // expired between KEYS and GET
			}
			return nil, fmt.Errorf("failed to read save %s: %w", key, err)
		}
		var rec saveRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			r.logger.Warn("Skipping unreadable save", "key", key, "error", err)
			continue
		}
		metas = append(metas, rec.Meta)
	}

	sortMetas(metas)
	return metas, nil
}

func (r *RedisStore) Delete(ctx context.Context, slot string) error {
	n, err := r.client.Del(ctx, saveKeyPrefix+slot).Result()
	if err != nil {
		r.logger.Error("Failed to delete save", "slot", slot, "error", err)
		return fmt.Errorf("failed to delete save: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("slot %q: %w", slot, ErrNotFound)
	}
	return nil
}

func metaFor(slot string, snap *session.Snapshot) session.SaveMeta {
	meta := session.SaveMeta{
		Slot:    slot,
		SavedAt: time.Now(),
	}
	if snap != nil && snap.Player != nil {
		meta.PlayerName = snap.Player.Name
		meta.PlayerLevel = snap.Player.Level
		meta.Location = snap.Player.MapID
	}
	return meta
}

// sortMetas orders newest first.
func sortMetas(metas []session.SaveMeta) {
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].SavedAt.After(metas[j].SavedAt)
	})
}
