package listing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dyluth/quill/internal/filter"
	"github.com/dyluth/quill/pkg/posts"
)

// OutputFormat specifies how to format the post list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table with truncated titles
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete posts as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputFormatDefault:
		return OutputFormatDefault, nil
	case OutputFormatJSONL:
		return OutputFormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Lister is the read side needed to list posts. Both posts.Store and the
// HTTP client satisfy it.
type Lister interface {
	List(ctx context.Context) ([]posts.Post, error)
}

// Options controls ListPosts.
type Options struct {
	Format   OutputFormat
	Criteria *filter.Criteria // nil = no filtering
	Sort     filter.SortMode
	Now      time.Time // reference for relative ages
}

// ListPosts fetches every post, filters and sorts client-side, and writes
// the result in the requested format. It returns the number of posts written.
func ListPosts(ctx context.Context, src Lister, opts Options, w io.Writer) (int, error) {
	all, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list posts: %w", err)
	}

	if opts.Criteria != nil && opts.Criteria.HasFilters() {
		all = opts.Criteria.Apply(all)
	}
	filter.Sort(all, opts.Sort)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	switch opts.Format {
	case OutputFormatDefault, "":
		return FormatTable(w, all, now), nil
	case OutputFormatJSONL:
		if err := FormatJSONL(w, all); err != nil {
			return 0, fmt.Errorf("failed to format JSONL output: %w", err)
		}
		return len(all), nil
	default:
		return 0, fmt.Errorf("unknown output format: %s", opts.Format)
	}
}
