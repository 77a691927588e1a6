package listing

import (
	"context"
	"fmt"
	"io"

	"github.com/dyluth/quill/pkg/posts"
)

// Getter is the read side needed to fetch a single post.
type Getter interface {
	Get(ctx context.Context, id string) (posts.Post, error)
}

// GetPost fetches one post by full ID and writes it as pretty-printed JSON.
// isNotFound classifies the source's not-found error; nil means
// posts.IsNotFound.
func GetPost(ctx context.Context, src Getter, id string, isNotFound func(error) bool, w io.Writer) error {
	if isNotFound == nil {
		isNotFound = posts.IsNotFound
	}

	p, err := src.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return &PostNotFoundError{PostID: id}
		}
		return fmt.Errorf("failed to fetch post: %w", err)
	}

	if err := FormatSingleJSON(w, p); err != nil {
		return fmt.Errorf("failed to format post: %w", err)
	}
	return nil
}

// PostNotFoundError distinguishes "no such post" from transport failures.
type PostNotFoundError struct {
	PostID string
}

func (e *PostNotFoundError) Error() string {
	return fmt.Sprintf("post with ID '%s' not found", e.PostID)
}

// IsNotFound returns true if the error is a PostNotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*PostNotFoundError)
	return ok
}
