package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/pkg/posts"
)

func receiveEvent(t *testing.T, sub *Subscription) posts.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for post event")
	}
	return posts.Event{}
}

func TestSubscribe_DeliversMutationEvents(t *testing.T) {
	s, _ := setupTestStore(t, store.Options{})
	ctx := context.Background()

	sub, err := s.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	title := "patched"
	p, err := s.Create(ctx, posts.Input{Title: "A", Body: "B"})
	require.NoError(t, err)
	_, err = s.Update(ctx, p.ID, posts.Input{Title: "A2", Body: "B2"})
	require.NoError(t, err)
	_, err = s.Patch(ctx, p.ID, posts.Patch{Title: &title})
	require.NoError(t, err)
	_, err = s.Delete(ctx, p.ID)
	require.NoError(t, err)

	want := []posts.EventType{posts.EventCreated, posts.EventUpdated, posts.EventPatched, posts.EventDeleted}
	for _, typ := range want {
		ev := receiveEvent(t, sub)
		assert.Equal(t, typ, ev.Type)
		assert.Equal(t, p.ID, ev.Post.ID)
	}
}

func TestSubscribe_NoEventOnFailedWrite(t *testing.T) {
	s, _ := setupTestStore(t, store.Options{})
	ctx := context.Background()

	sub, err := s.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	_, err = s.Create(ctx, posts.Input{Title: "no body"})
	require.Error(t, err)
	_, err = s.Delete(ctx, "missing")
	require.Error(t, err)

	// A later successful write is the first thing delivered.
	p, err := s.Create(ctx, posts.Input{Title: "A", Body: "B"})
	require.NoError(t, err)
	ev := receiveEvent(t, sub)
	assert.Equal(t, posts.EventCreated, ev.Type)
	assert.Equal(t, p.ID, ev.Post.ID)
}

func TestSubscribe_ReportsMalformedPayloads(t *testing.T) {
	s, mr := setupTestStore(t, store.Options{})
	ctx := context.Background()

	sub, err := s.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	mr.Publish(PostEventsChannel("test-instance"), "{not json")

	select {
	case err := <-sub.Errors():
		assert.Contains(t, err.Error(), "failed to unmarshal post event")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for subscription error")
	}
}

func TestSubscription_CloseReleasesGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	defer mr.Close()

	s, err := New(&redis.Options{Addr: mr.Addr()}, "leak-check", store.Options{})
	require.NoError(t, err)
	defer s.Close()

	sub, err := s.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "second close is a no-op")

	_, open := <-sub.Events()
	assert.False(t, open)
}
