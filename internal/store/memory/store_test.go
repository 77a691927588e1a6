package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/internal/store/storetest"
	"github.com/dyluth/quill/pkg/posts"
)

func TestContract_MemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts store.Options) posts.Store {
		t.Helper()
		return New(opts)
	})
}

// Nothing in the memory store blocks, so a cancelled context does not stop it.
func TestStore_DoesNotDependOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(store.Options{})
	p, err := s.Create(ctx, posts.Input{Title: "A", Body: "B"})
	require.NoError(t, err)

	_, err = s.Patch(ctx, p.ID, posts.Patch{Title: strPtr("A2")})
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "A2", all[0].Title)

	removed, err := s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, removed.ID)
}

func strPtr(s string) *string { return &s }
