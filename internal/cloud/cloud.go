// Package cloud keeps each user's document in a Redis hash so several
// machines can share one set of tasks and streaks.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/streakr/internal/store"
)

const keyPrefix = "streakr:user:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

// DocumentStore is the remote Backend.
type DocumentStore struct {
	client *redis.Client
	log    *logrus.Entry
}

var _ store.Backend = (*DocumentStore)(nil)

// New connects and pings the server.
func New(ctx context.Context, opts Options, log *logrus.Entry) (*DocumentStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &DocumentStore{
		client: client,
		log:    log.WithField("backend", "redis"),
	}, nil
}

func userKey(userID string) string {
	return keyPrefix + userID
}

func (d *DocumentStore) Load(ctx context.Context, userID string) (*store.Snapshot, error) {
	doc, err := d.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", userID, err)
	}

	snap := &store.Snapshot{}
	targets := map[string]any{
		"tasks":     &snap.Tasks,
		"progress":  &snap.Progress,
		"streak":    &snap.Streak,
		"tags":      &snap.Tags,
		"bookmarks": &snap.Bookmarks,
	}
	for field, dst := range targets {
		raw, ok := doc[field]
		if !ok || raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return nil, fmt.Errorf("decode %s for %s: %w", field, userID, err)
		}
	}
	return snap, nil
}

// Save writes only the selected fields, atomically.
func (d *DocumentStore) Save(ctx context.Context, userID string, snap store.Snapshot, fields store.Field) error {
	values, err := encodeFields(snap, fields)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	key := userKey(userID)
	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save document %s: %w", userID, err)
	}
	d.log.WithFields(logrus.Fields{"user": userID, "fields": fields.String()}).Debug("document saved")
	return nil
}

func encodeFields(snap store.Snapshot, fields store.Field) (map[string]any, error) {
	sources := map[store.Field]any{
		store.FieldTasks:     nonNil(snap.Tasks),
		store.FieldProgress:  nonNil(snap.Progress),
		store.FieldStreak:    snap.Streak,
		store.FieldTags:      nonNil(snap.Tags),
		store.FieldBookmarks: nonNil(snap.Bookmarks),
	}
	values := make(map[string]any)
	for _, f := range []store.Field{store.FieldTasks, store.FieldProgress, store.FieldStreak, store.FieldTags, store.FieldBookmarks} {
		if !fields.Has(f) {
			continue
		}
		data, err := json.Marshal(sources[f])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f, err)
		}
		values[f.String()] = string(data)
	}
	return values, nil
}

// nonNil keeps empty lists as [] in the document instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (d *DocumentStore) Close() error {
	return d.client.Close()
}
