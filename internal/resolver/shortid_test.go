package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/internal/store/memory"
	"github.com/dyluth/quill/pkg/posts"
)

// storeWithIDs creates one post per id.
func storeWithIDs(t *testing.T, ids ...string) *memory.Store {
	t.Helper()
	i := 0
	s := memory.New(store.Options{NewID: func() string {
		id := ids[i]
		i++
		return id
	}})
	for range ids {
		_, err := s.Create(context.Background(), posts.Input{Title: "t", Body: "b"})
		require.NoError(t, err)
	}
	return s
}

const (
	idA = "abc12345-0000-4000-8000-000000000001"
	idB = "abc12399-0000-4000-8000-000000000002"
	idC = "def67890-0000-4000-8000-000000000003"
)

func TestResolvePostID(t *testing.T) {
	s := storeWithIDs(t, idA, idB, idC)
	ctx := context.Background()

	t.Run("full UUID", func(t *testing.T) {
		id, err := ResolvePostID(ctx, s, idC, nil)
		require.NoError(t, err)
		assert.Equal(t, idC, id)
	})

	t.Run("full UUID that does not exist", func(t *testing.T) {
		_, err := ResolvePostID(ctx, s, "99999999-0000-4000-8000-000000000000", nil)
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("unique prefix", func(t *testing.T) {
		id, err := ResolvePostID(ctx, s, "abc123", nil)
		require.Error(t, err, "abc123 is shared by two posts")
		assert.True(t, IsAmbiguousError(err))

		id, err = ResolvePostID(ctx, s, "ABC1234", nil)
		require.NoError(t, err)
		assert.Equal(t, idA, id)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ResolvePostID(ctx, s, "abc", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
		assert.ErrorIs(t, err, ErrShortIDTooShort)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := ResolvePostID(ctx, s, "ffffff", nil)
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))
		assert.Equal(t, "no posts found matching 'ffffff'", err.Error())
	})

	t.Run("custom not-found classifier", func(t *testing.T) {
		errGone := errors.New("gone")
		_, err := ResolvePostID(ctx, goneSource{err: errGone}, idA, func(err error) bool { return errors.Is(err, errGone) })
		assert.True(t, IsNotFoundError(err))
	})
}

func TestFormatAmbiguousError(t *testing.T) {
	matches := make([]string, 12)
	for i := range matches {
		matches[i] = fmt.Sprintf("abcdef%02d", i)
	}
	msg := FormatAmbiguousError(&AmbiguousError{ShortID: "abcdef", Matches: matches})

	assert.Contains(t, msg, "matches 12 posts")
	assert.Contains(t, msg, "  abcdef09\n")
	assert.NotContains(t, msg, "abcdef10")
	assert.Contains(t, msg, "...and 2 more")
	assert.True(t, strings.HasSuffix(msg, "uniquely identify the post."))
}

type goneSource struct{ err error }

func (g goneSource) List(context.Context) ([]posts.Post, error) { return nil, g.err }
func (g goneSource) Get(context.Context, string) (posts.Post, error) {
	return posts.Post{}, g.err
}
