// Package storetest is the behavioural contract every posts.Store backend
// must satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/internal/clock"
	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/pkg/posts"
)

// Factory builds a fresh, empty store wired to the given options.
type Factory func(t *testing.T, opts store.Options) posts.Store

// Start is the manual clock origin used by the contract. Microsecond
// precision keeps it representable in every backend.
var Start = time.Date(2026, 3, 14, 15, 9, 26, 535000, time.UTC)

type fixture struct {
	store posts.Store
	clock *clock.Manual
}

func newFixture(t *testing.T, factory Factory) fixture {
	t.Helper()
	clk := clock.NewManual(Start)
	var seq atomic.Int64
	newID := func() string {
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", seq.Add(1))
	}
	return fixture{
		store: factory(t, store.Options{Clock: clk, NewID: newID}),
		clock: clk,
	}
}

func strPtr(s string) *string { return &s }

func mustCreate(t *testing.T, s posts.Store, title, body string) posts.Post {
	t.Helper()
	p, err := s.Create(context.Background(), posts.Input{Title: title, Body: body})
	require.NoError(t, err)
	return p
}

func count(t *testing.T, s posts.Store) int {
	t.Helper()
	all, err := s.List(context.Background())
	require.NoError(t, err)
	return len(all)
}

// Run executes the full contract against factory.
func Run(t *testing.T, factory Factory) {
	ctx := context.Background()

	t.Run("create assigns id and equal timestamps", func(t *testing.T) {
		f := newFixture(t, factory)
		p, err := f.store.Create(ctx, posts.Input{Title: "A", Body: "B"})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "A", p.Title)
		assert.Equal(t, "B", p.Body)
		assert.Equal(t, "", p.Excerpt)
		assert.NotNil(t, p.Tags)
		assert.Empty(t, p.Tags)
		assert.True(t, p.CreatedAt.Equal(p.UpdatedAt))
		assert.True(t, p.CreatedAt.Equal(Start))

		got, err := f.store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Empty(t, got.Tags)
		assert.True(t, got.CreatedAt.Equal(p.CreatedAt))
	})

	t.Run("create normalizes excerpt and tags", func(t *testing.T) {
		f := newFixture(t, factory)
		p, err := f.store.Create(ctx, posts.Input{
			Title:   " A ",
			Body:    "B",
			Excerpt: strPtr("  short "),
			Tags:    posts.TagsOf("go, ,blog "),
		})
		require.NoError(t, err)
		assert.Equal(t, "A", p.Title)
		assert.Equal(t, "short", p.Excerpt)
		assert.Equal(t, []string{"go", "blog"}, p.Tags)

		got, err := f.store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "blog"}, got.Tags)
		assert.Equal(t, "short", got.Excerpt)
	})

	t.Run("create with empty title leaves store unchanged", func(t *testing.T) {
		f := newFixture(t, factory)
		mustCreate(t, f.store, "keep", "me")

		_, err := f.store.Create(ctx, posts.Input{Title: "", Body: "B"})
		require.Error(t, err)
		assert.True(t, posts.IsInvalidInput(err))
		assert.Equal(t, 1, count(t, f.store))
	})

	t.Run("get unknown id is not found", func(t *testing.T) {
		f := newFixture(t, factory)
		_, err := f.store.Get(ctx, "missing")
		assert.True(t, posts.IsNotFound(err))
	})

	t.Run("list is newest first", func(t *testing.T) {
		f := newFixture(t, factory)
		var ids []string
		for i := 0; i < 5; i++ {
			f.clock.Advance(time.Second)
			ids = append(ids, mustCreate(t, f.store, fmt.Sprintf("t%d", i), "b").ID)
		}

		all, err := f.store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 5)
		for i, p := range all {
			assert.Equal(t, ids[len(ids)-1-i], p.ID)
		}
	})

	t.Run("list of empty store is empty not nil", func(t *testing.T) {
		f := newFixture(t, factory)
		all, err := f.store.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("update replaces title and body and keeps omitted fields", func(t *testing.T) {
		f := newFixture(t, factory)
		p, err := f.store.Create(ctx, posts.Input{Title: "A", Body: "B", Excerpt: strPtr("e"), Tags: posts.TagsOf("x")})
		require.NoError(t, err)

		later := f.clock.Advance(time.Minute)
		up, err := f.store.Update(ctx, p.ID, posts.Input{Title: "A2", Body: "B2"})
		require.NoError(t, err)
		assert.Equal(t, p.ID, up.ID)
		assert.Equal(t, "A2", up.Title)
		assert.Equal(t, "B2", up.Body)
		assert.Equal(t, "e", up.Excerpt)
		assert.Equal(t, []string{"x"}, up.Tags)
		assert.True(t, up.CreatedAt.Equal(p.CreatedAt))
		assert.True(t, up.UpdatedAt.Equal(later))

		got, err := f.store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "A2", got.Title)
		assert.True(t, got.UpdatedAt.Equal(later))
	})

	t.Run("update replaces excerpt and tags when provided", func(t *testing.T) {
		f := newFixture(t, factory)
		p, err := f.store.Create(ctx, posts.Input{Title: "A", Body: "B", Excerpt: strPtr("e"), Tags: posts.TagsOf("x")})
		require.NoError(t, err)

		up, err := f.store.Update(ctx, p.ID, posts.Input{Title: "A", Body: "B", Excerpt: strPtr("f"), Tags: posts.TagsOf("y,z")})
		require.NoError(t, err)
		assert.Equal(t, "f", up.Excerpt)
		assert.Equal(t, []string{"y", "z"}, up.Tags)
	})

	t.Run("update unknown id is not found and changes nothing", func(t *testing.T) {
		f := newFixture(t, factory)
		p := mustCreate(t, f.store, "A", "B")

		_, err := f.store.Update(ctx, "missing", posts.Input{Title: "X", Body: "Y"})
		assert.True(t, posts.IsNotFound(err))

		// Existence is checked before input validation.
		_, err = f.store.Update(ctx, "missing", posts.Input{})
		assert.True(t, posts.IsNotFound(err))

		all, err := f.store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, p.Title, all[0].Title)
	})

	t.Run("update with missing body is invalid and changes nothing", func(t *testing.T) {
		f := newFixture(t, factory)
		p := mustCreate(t, f.store, "A", "B")
		f.clock.Advance(time.Minute)

		_, err := f.store.Update(ctx, p.ID, posts.Input{Title: "X"})
		assert.True(t, posts.IsInvalidInput(err))

		got, err := f.store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "A", got.Title)
		assert.True(t, got.UpdatedAt.Equal(p.UpdatedAt))
	})

	t.Run("patch title only advances updatedAt", func(t *testing.T) {
		f := newFixture(t, factory)
		p := mustCreate(t, f.store, "A", "B")

		f.clock.Advance(time.Second)
		out, err := f.store.Patch(ctx, p.ID, posts.Patch{Title: strPtr("X")})
		require.NoError(t, err)
		assert.Equal(t, "X", out.Title)
		assert.Equal(t, "B", out.Body)
		assert.True(t, out.UpdatedAt.After(p.UpdatedAt))
		assert.True(t, out.CreatedAt.Equal(p.CreatedAt))

		got, err := f.store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "X", got.Title)
		assert.Equal(t, "B", got.Body)
	})

	t.Run("patch without title or body is invalid", func(t *testing.T) {
		f := newFixture(t, factory)
		p := mustCreate(t, f.store, "A", "B")

		_, err := f.store.Patch(ctx, p.ID, posts.Patch{})
		require.Error(t, err)
		assert.True(t, posts.IsInvalidInput(err))
		assert.Equal(t, posts.MsgPatchFieldRequired, err.Error())
	})

	t.Run("patch unknown id is not found", func(t *testing.T) {
		f := newFixture(t, factory)
		_, err := f.store.Patch(ctx, "missing", posts.Patch{Title: strPtr("X")})
		assert.True(t, posts.IsNotFound(err))
	})

	t.Run("delete removes exactly one post", func(t *testing.T) {
		f := newFixture(t, factory)
		a := mustCreate(t, f.store, "A", "1")
		b := mustCreate(t, f.store, "B", "2")
		c := mustCreate(t, f.store, "C", "3")

		removed, err := f.store.Delete(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, removed.ID)
		assert.Equal(t, "B", removed.Title)

		_, err = f.store.Get(ctx, b.ID)
		assert.True(t, posts.IsNotFound(err))

		all, err := f.store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, c.ID, all[0].ID)
		assert.Equal(t, a.ID, all[1].ID)
	})

	t.Run("delete unknown id is not found", func(t *testing.T) {
		f := newFixture(t, factory)
		mustCreate(t, f.store, "A", "B")
		_, err := f.store.Delete(ctx, "missing")
		assert.True(t, posts.IsNotFound(err))
		assert.Equal(t, 1, count(t, f.store))
	})

	t.Run("timestamps survive a round trip at nanosecond clock readings", func(t *testing.T) {
		f := newFixture(t, factory)
		f.clock.Set(Start.Add(789 * time.Nanosecond))

		created := mustCreate(t, f.store, "A", "B")
		got, err := f.store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt), "create returned %v, get returned %v", created.CreatedAt, got.CreatedAt)
		assert.True(t, created.UpdatedAt.Equal(got.UpdatedAt))

		f.clock.Advance(time.Second + 321*time.Nanosecond)
		patched, err := f.store.Patch(ctx, created.ID, posts.Patch{Title: strPtr("A2")})
		require.NoError(t, err)
		got, err = f.store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, patched.UpdatedAt.Equal(got.UpdatedAt), "patch returned %v, get returned %v", patched.UpdatedAt, got.UpdatedAt)
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("returned posts do not alias stored state", func(t *testing.T) {
		f := newFixture(t, factory)
		p, err := f.store.Create(ctx, posts.Input{Title: "A", Body: "B", Tags: posts.TagsOf("keep")})
		require.NoError(t, err)
		p.Tags[0] = "mutated"

		all, err := f.store.List(ctx)
		require.NoError(t, err)
		all[0].Tags[0] = "mutated"

		got, err := f.store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"keep"}, got.Tags)
	})

	t.Run("concurrent creates all land", func(t *testing.T) {
		f := newFixture(t, factory)
		const n = 20

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := f.store.Create(ctx, posts.Input{Title: fmt.Sprintf("t%d", i), Body: "b"})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		all, err := f.store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, n)
		seen := make(map[string]bool, n)
		for _, p := range all {
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
	})
}
