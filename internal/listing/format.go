package listing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/quill/pkg/posts"
)

// FormatTable writes posts as a formatted table to the provided writer.
// Columns: ID (short), AGE, TAGS, TITLE (truncated).
// Returns the number of posts formatted.
func FormatTable(w io.Writer, list []posts.Post, now time.Time) int {
	if len(list) == 0 {
		fmt.Fprintln(w, "No posts found")
		return 0
	}

	fmt.Fprintf(w, "%-8s %-8s %-20s %s\n", "ID", "AGE", "TAGS", "TITLE")
	fmt.Fprintf(w, "%-8s %-8s %-20s %s\n",
		"--------", "--------", "--------------------", "----------------------------------------")

	for _, p := range list {
		fmt.Fprintf(w, "%-8s %-8s %-20s %s\n",
			formatID(p.ID),
			formatAge(p.CreatedAt, now),
			formatTags(p.Tags),
			formatTitle(p.Title),
		)
	}

	countMsg := "post"
	if len(list) != 1 {
		countMsg = "posts"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(list), countMsg)

	return len(list)
}

// FormatJSONL writes posts as line-delimited JSON, one post per line.
func FormatJSONL(w io.Writer, list []posts.Post) error {
	for _, p := range list {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal post to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes a single post as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, p posts.Post) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal post to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// formatID truncates the post ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTitle keeps the first line, capped at 40 characters.
func formatTitle(title string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(title), "\n")
	if line == "" {
		return "-"
	}
	if r := []rune(line); len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return line
}

// formatTags renders tags as "#a #b", truncated to the column width.
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	s := "#" + strings.Join(tags, " #")
	if r := []rune(s); len(r) > 20 {
		return string(r[:17]) + "..."
	}
	return s
}

// formatAge renders t relative to now, like "2m ago".
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}

	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
