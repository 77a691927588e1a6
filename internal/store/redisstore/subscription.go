package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dyluth/quill/pkg/posts"
)

// Subscription represents an active Pub/Sub subscription to post events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan posts.Event
	errors <-chan error
	cancel func()
	done   <-chan struct{}
	once   sync.Once
}

// Events returns the channel of post events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan posts.Event {
	return s.events
}

// Errors returns the channel of non-fatal subscription errors (bad payloads).
// The subscription continues after errors; the offending message is skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and waits for its goroutine to exit.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}

// Subscribe listens for post events on this instance's channel.
// The SUBSCRIBE is confirmed before returning, so events published after
// Subscribe returns are delivered.
//
// Events are delivered on a buffered channel (size 10). Redis Pub/Sub is
// at-most-once: a subscriber that falls too far behind loses messages.
func (s *Store) Subscribe(ctx context.Context) (*Subscription, error) {
	channel := PostEventsChannel(s.instanceName)
	pubsub := s.rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	eventsChan := make(chan posts.Event, 10)
	errorsChan := make(chan error, 10)
	done := make(chan struct{})
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(done)
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event posts.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal post event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
		done:   done,
	}, nil
}
