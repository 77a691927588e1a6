package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/pkg/posts"
)

// maxTxRetries bounds optimistic WATCH retries for a single mutation.
const maxTxRetries = 16

// Store is a Redis-backed posts.Store.
// All keys and channels are namespaced with the instance name.
// The store is safe for concurrent use from multiple goroutines.
type Store struct {
	rdb          *redis.Client
	instanceName string
	opts         store.Options
}

// New creates a Redis store for the given instance.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - instanceName: namespace for keys and channels (must not be empty)
//   - opts: clock and ID generator; zero values use the defaults
func New(redisOpts *redis.Options, instanceName string, opts store.Options) (*Store, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Store{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
		opts:         opts.WithDefaults(),
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// InstanceName returns the namespace this store writes under.
func (s *Store) InstanceName() string {
	return s.instanceName
}

// List returns every post, newest first, following the order list.
// IDs whose hash vanished between LRANGE and HGETALL are skipped.
func (s *Store) List(ctx context.Context) ([]posts.Post, error) {
	ids, err := s.rdb.LRange(ctx, OrderKey(s.instanceName), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read post order from Redis: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			cmds = append(cmds, pipe.HGetAll(ctx, PostKey(s.instanceName, id)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read posts from Redis: %w", err)
	}

	out := make([]posts.Post, 0, len(cmds))
	for i, cmd := range cmds {
		hash := cmd.Val()
		if len(hash) == 0 {
			continue
		}
		p, err := HashToPost(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize post %s: %w", ids[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Get retrieves a post by ID. Returns posts.ErrNotFound if it doesn't exist.
func (s *Store) Get(ctx context.Context, id string) (posts.Post, error) {
	hash, err := s.rdb.HGetAll(ctx, PostKey(s.instanceName, id)).Result()
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to read post from Redis: %w", err)
	}
	// HGetAll returns an empty map for non-existent keys
	if len(hash) == 0 {
		return posts.Post{}, posts.ErrNotFound
	}

	p, err := HashToPost(hash)
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to deserialize post: %w", err)
	}
	return p, nil
}

// Create validates in, writes the post hash, pushes its ID to the front of
// the order list and publishes an EventCreated, all in one MULTI/EXEC.
func (s *Store) Create(ctx context.Context, in posts.Input) (posts.Post, error) {
	now := s.opts.Clock.Now()
	p, err := posts.NewPost(in, s.opts.NewID(), now)
	if err != nil {
		return posts.Post{}, err
	}

	key := PostKey(s.instanceName, p.ID)
	hash, err := PostToHash(p)
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to serialize post: %w", err)
	}
	event, err := marshalEvent(posts.EventCreated, p, now)
	if err != nil {
		return posts.Post{}, err
	}

	err = s.withRetry(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return posts.ErrDuplicateID
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hash)
			pipe.LPush(ctx, OrderKey(s.instanceName), p.ID)
			pipe.Publish(ctx, PostEventsChannel(s.instanceName), event)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return posts.Post{}, wrapWrite("create", err)
	}
	return p, nil
}

// Update performs a full replace of title and body (see posts.ApplyUpdate).
func (s *Store) Update(ctx context.Context, id string, in posts.Input) (posts.Post, error) {
	return s.mutate(ctx, id, posts.EventUpdated, func(p posts.Post) (posts.Post, error) {
		return posts.ApplyUpdate(p, in, s.opts.Clock.Now())
	})
}

// Patch replaces only the fields present in patch (see posts.ApplyPatch).
func (s *Store) Patch(ctx context.Context, id string, patch posts.Patch) (posts.Post, error) {
	return s.mutate(ctx, id, posts.EventPatched, func(p posts.Post) (posts.Post, error) {
		return posts.ApplyPatch(p, patch, s.opts.Clock.Now())
	})
}

// Delete removes the post hash and its order entry and returns the removed post.
func (s *Store) Delete(ctx context.Context, id string) (posts.Post, error) {
	key := PostKey(s.instanceName, id)
	var removed posts.Post

	err := s.withRetry(ctx, func(tx *redis.Tx) error {
		current, err := readPost(ctx, tx, key)
		if err != nil {
			return err
		}
		event, err := marshalEvent(posts.EventDeleted, current, s.opts.Clock.Now())
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.LRem(ctx, OrderKey(s.instanceName), 1, id)
			pipe.Publish(ctx, PostEventsChannel(s.instanceName), event)
			return nil
		})
		if err != nil {
			return err
		}
		removed = current
		return nil
	}, key)
	if err != nil {
		return posts.Post{}, wrapWrite("delete", err)
	}
	return removed, nil
}

// mutate runs a WATCHed read-modify-write of a single post hash.
// A validation error from fn aborts without writing anything.
func (s *Store) mutate(ctx context.Context, id string, eventType posts.EventType, fn func(posts.Post) (posts.Post, error)) (posts.Post, error) {
	key := PostKey(s.instanceName, id)
	var result posts.Post

	err := s.withRetry(ctx, func(tx *redis.Tx) error {
		current, err := readPost(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		hash, err := PostToHash(next)
		if err != nil {
			return fmt.Errorf("failed to serialize post: %w", err)
		}
		event, err := marshalEvent(eventType, next, next.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, hash)
			pipe.Publish(ctx, PostEventsChannel(s.instanceName), event)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}, key)
	if err != nil {
		return posts.Post{}, wrapWrite(string(eventType), err)
	}
	return result, nil
}

// withRetry runs fn under WATCH on keys, retrying when another client
// modified a watched key between the read and EXEC.
func (s *Store) withRetry(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", maxTxRetries, redis.TxFailedErr)
}

func readPost(ctx context.Context, tx *redis.Tx, key string) (posts.Post, error) {
	hash, err := tx.HGetAll(ctx, key).Result()
	if err != nil {
		return posts.Post{}, err
	}
	if len(hash) == 0 {
		return posts.Post{}, posts.ErrNotFound
	}
	p, err := HashToPost(hash)
	if err != nil {
		return posts.Post{}, fmt.Errorf("failed to deserialize post: %w", err)
	}
	return p, nil
}

func marshalEvent(eventType posts.EventType, p posts.Post, at time.Time) (string, error) {
	data, err := json.Marshal(posts.Event{Type: eventType, Post: p, At: at})
	if err != nil {
		return "", fmt.Errorf("failed to marshal post event: %w", err)
	}
	return string(data), nil
}

// wrapWrite passes domain errors through untouched so callers can match them.
func wrapWrite(op string, err error) error {
	if posts.IsNotFound(err) || posts.IsInvalidInput(err) || errors.Is(err, posts.ErrDuplicateID) {
		return err
	}
	return fmt.Errorf("failed to %s post in Redis: %w", op, err)
}
