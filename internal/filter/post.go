package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dyluth/quill/pkg/posts"
)

// Criteria defines filtering criteria for posts.
// All filters are ANDed together - a post must match ALL criteria to pass.
type Criteria struct {
	Since time.Time // CreatedAt lower bound, zero = no filter
	Until time.Time // CreatedAt upper bound, zero = no filter
	Tag   string    // Exact tag (case-insensitive), empty = no filter
	Query string    // Case-insensitive substring, empty = no filter
}

// Matches returns true if the post matches all filter criteria.
//
// Query is matched against title, excerpt, body and the tags rendered as
// "#tag", so a query of "#go" selects posts tagged go.
func (c *Criteria) Matches(p posts.Post) bool {
	if !c.Since.IsZero() && p.CreatedAt.Before(c.Since) {
		return false
	}
	if !c.Until.IsZero() && p.CreatedAt.After(c.Until) {
		return false
	}

	if c.Tag != "" && !hasTag(p, c.Tag) {
		return false
	}

	if q := strings.TrimSpace(c.Query); q != "" {
		if !strings.Contains(haystack(p), strings.ToLower(q)) {
			return false
		}
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return !c.Since.IsZero() ||
		!c.Until.IsZero() ||
		c.Tag != "" ||
		strings.TrimSpace(c.Query) != ""
}

// Apply returns the posts that match c, preserving order.
func (c *Criteria) Apply(in []posts.Post) []posts.Post {
	out := make([]posts.Post, 0, len(in))
	for _, p := range in {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func hasTag(p posts.Post, tag string) bool {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func haystack(p posts.Post) string {
	parts := make([]string, 0, 3+len(p.Tags))
	parts = append(parts, p.Title, p.Excerpt, p.Body)
	for _, t := range p.Tags {
		parts = append(parts, "#"+t)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// SortMode orders a post listing.
type SortMode string

const (
	SortNewest SortMode = "newest"
	SortOldest SortMode = "oldest"
	SortTitle  SortMode = "title"
)

// ParseSortMode validates a --sort flag value. Empty means newest.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest, SortTitle:
		return SortMode(s), nil
	default:
		return "", fmt.Errorf("invalid sort mode: %s (must be 'newest', 'oldest', or 'title')", s)
	}
}

// Sort orders in place. Ties keep their incoming order.
func Sort(list []posts.Post, mode SortMode) {
	switch mode {
	case SortOldest:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	case SortTitle:
		sort.SliceStable(list, func(i, j int) bool {
			return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
		})
	default:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}
}
