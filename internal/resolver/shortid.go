package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dyluth/quill/pkg/posts"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
// Set to 6 characters to balance usability with collision avoidance.
const MinShortIDLength = 6

// ErrShortIDTooShort is returned for prefixes under MinShortIDLength.
var ErrShortIDTooShort = errors.New("short ID too short")

// Source is what resolution needs: a way to verify a full ID and a way to
// enumerate every post.
type Source interface {
	List(ctx context.Context) ([]posts.Post, error)
	Get(ctx context.Context, id string) (posts.Post, error)
}

// ResolvePostID resolves a short ID prefix to a full post ID.
// isNotFound classifies Source's not-found error; nil means posts.IsNotFound.
//
// Three cases:
//  1. Input is already a full UUID - its existence is verified
//  2. Input is shorter than MinShortIDLength - validation error
//  3. Otherwise the prefix is matched against every listed post
func ResolvePostID(ctx context.Context, src Source, shortID string, isNotFound func(error) bool) (string, error) {
	if isNotFound == nil {
		isNotFound = posts.IsNotFound
	}
	shortID = strings.ToLower(strings.TrimSpace(shortID))

	if _, err := uuid.Parse(shortID); err == nil && len(shortID) == 36 {
		if _, err := src.Get(ctx, shortID); err != nil {
			if isNotFound(err) {
				return "", &NotFoundError{ShortID: shortID}
			}
			return "", fmt.Errorf("failed to verify post existence: %w", err)
		}
		return shortID, nil
	}

	if len(shortID) < MinShortIDLength {
		return "", fmt.Errorf("%w: must be at least %d characters (got %d)", ErrShortIDTooShort, MinShortIDLength, len(shortID))
	}

	all, err := src.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to search for post: %w", err)
	}

	var matches []string
	for _, p := range all {
		if strings.HasPrefix(strings.ToLower(p.ID), shortID) {
			matches = append(matches, p.ID)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", &NotFoundError{ShortID: shortID}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{ShortID: shortID, Matches: matches}
	}
}

// NotFoundError indicates no posts matched the short ID.
type NotFoundError struct {
	ShortID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no posts found matching '%s'", e.ShortID)
}

// AmbiguousError indicates multiple posts matched the short ID.
type AmbiguousError struct {
	ShortID string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous short ID '%s' matches %d posts", e.ShortID, len(e.Matches))
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous short IDs.
// Lists all matching IDs (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: ambiguous short ID '%s' matches %d posts:\n", err.ShortID, len(err.Matches))

	displayCount := min(len(err.Matches), 10)
	for i := 0; i < displayCount; i++ {
		fmt.Fprintf(&b, "  %s\n", err.Matches[i])
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&b, "  ...and %d more\n", len(err.Matches)-10)
	}

	b.WriteString("\nUse a longer prefix to uniquely identify the post.")
	return b.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
