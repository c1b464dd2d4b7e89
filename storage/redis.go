package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis is an Adapter backed by a redis instance. Every mutation publishes
// a change notice on a companion pub/sub channel so other clients sharing
// the same namespace observe logouts without polling.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	channel string
}

// NewRedis wraps an existing go-redis client. The adapter does not own the
// client; Close leaves it open. An empty prefix falls back to
// [DefaultKeyPrefix].
func NewRedis(client redis.UniversalClient, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("storage: redis client required")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{
		client:  client,
		prefix:  prefix,
		channel: prefix + "events",
	}, nil
}

// Get implements Adapter.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements Adapter.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return err
	}
	// Best-effort notice; a dropped publish only delays convergence.
	r.client.Publish(ctx, r.channel, "set:"+key)
	return nil
}

// Delete implements Adapter.
func (r *Redis) Delete(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		r.client.Publish(ctx, r.channel, "del:"+key)
	}
	return nil
}

// Keys implements Adapter.
func (r *Redis) Keys(ctx context.Context) ([]string, error) {
	raw, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if k == r.channel {
			continue
		}
		keys = append(keys, strings.TrimPrefix(k, r.prefix))
	}
	return keys, nil
}

// Close implements Adapter. The wrapped client is shared and stays open.
func (r *Redis) Close() error { return nil }

// Watch implements Watcher over the companion pub/sub channel.
func (r *Redis) Watch(ctx context.Context) (<-chan Event, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, ok := parseNotice(msg.Payload)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	return out, nil
}

func parseNotice(payload string) (Event, bool) {
	op, key, ok := strings.Cut(payload, ":")
	if !ok {
		return Event{}, false
	}
	switch op {
	case "set":
		return Event{Key: key, Op: OpSet}, true
	case "del":
		return Event{Key: key, Op: OpDelete}, true
	default:
		return Event{}, false
	}
}
