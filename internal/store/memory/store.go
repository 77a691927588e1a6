package memory

import (
	"context"
	"sync"

	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/pkg/posts"
)

// Store is an in-memory implementation of posts.Store.
// Posts are held newest-first. It is safe for concurrent use; every
// mutation runs under a single lock.
type Store struct {
	mu    sync.RWMutex
	posts []posts.Post
	opts  store.Options
}

func New(opts store.Options) *Store {
	return &Store{
		posts: make([]posts.Post, 0),
		opts:  opts.WithDefaults(),
	}
}

func (s *Store) List(_ context.Context) ([]posts.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]posts.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (posts.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return posts.Post{}, posts.ErrNotFound
	}
	return s.posts[idx].Clone(), nil
}

func (s *Store) Create(_ context.Context, in posts.Input) (posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := posts.NewPost(in, s.opts.NewID(), s.opts.Clock.Now())
	if err != nil {
		return posts.Post{}, err
	}
	if s.indexOf(p.ID) >= 0 {
		return posts.Post{}, posts.ErrDuplicateID
	}

	// Newest first.
	s.posts = append(s.posts, posts.Post{})
	copy(s.posts[1:], s.posts)
	s.posts[0] = p
	return p.Clone(), nil
}

func (s *Store) Update(_ context.Context, id string, in posts.Input) (posts.Post, error) {
	return s.mutate(id, func(p posts.Post) (posts.Post, error) {
		return posts.ApplyUpdate(p, in, s.opts.Clock.Now())
	})
}

func (s *Store) Patch(_ context.Context, id string, patch posts.Patch) (posts.Post, error) {
	return s.mutate(id, func(p posts.Post) (posts.Post, error) {
		return posts.ApplyPatch(p, patch, s.opts.Clock.Now())
	})
}

func (s *Store) Delete(_ context.Context, id string) (posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return posts.Post{}, posts.ErrNotFound
	}
	removed := s.posts[idx]
	s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
	return removed, nil
}

// mutate looks up id and replaces it in place with the result of fn.
// Existence is checked before fn runs so NotFound wins over invalid input.
func (s *Store) mutate(id string, fn func(posts.Post) (posts.Post, error)) (posts.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return posts.Post{}, posts.ErrNotFound
	}
	next, err := fn(s.posts[idx])
	if err != nil {
		return posts.Post{}, err
	}
	s.posts[idx] = next
	return next.Clone(), nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}
