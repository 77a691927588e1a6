package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Post is a single blog entry as held by a Store.
type Post struct {
	ID        string    `json:"id"`        // UUID assigned at creation
	Title     string    `json:"title"`     // Never empty
	Body      string    `json:"body"`      // Never empty
	Excerpt   string    `json:"excerpt"`   // Empty when not supplied
	Tags      []string  `json:"tags"`      // Never nil once normalized, never contains ""
	CreatedAt time.Time `json:"createdAt"` // Set once
	UpdatedAt time.Time `json:"updatedAt"` // Refreshed on every successful write
}

// Clone returns a deep copy of the post so callers can't share the tag slice.
func (p Post) Clone() Post {
	cp := p
	cp.Tags = append(make([]string, 0, len(p.Tags)), p.Tags...)
	return cp
}

// Tags is a tag list that decodes from either a JSON array of strings or a
// single comma-separated string ("go, blog,,news" -> ["go","blog","news"]).
type Tags []string

// UnmarshalJSON accepts `["a","b"]`, `"a, b"` or null.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Tags{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Tags(ParseTags(s))
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be an array of strings or a comma-separated string")
	}
	*t = Tags(NormalizeTags(list))
	return nil
}

// ParseTags splits a comma-separated string into normalized tags.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims every entry and drops empty ones, preserving order.
// The result is never nil.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// TagsOf is a convenience for building an explicit tag list from a
// comma-separated string.
func TagsOf(s string) *Tags {
	t := Tags(ParseTags(s))
	return &t
}

// Input is the payload for Create and Update (full replace).
// Excerpt and Tags are nil when the caller did not provide them.
type Input struct {
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	Excerpt *string `json:"excerpt,omitempty"`
	Tags    *Tags   `json:"tags,omitempty"`
}

// Validate checks that title and body are present after trimming.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return invalid(MsgTitleAndBodyRequired)
	}
	return nil
}

// Patch is the payload for a partial update. Nil fields are left untouched.
type Patch struct {
	Title   *string `json:"title,omitempty"`
	Body    *string `json:"body,omitempty"`
	Excerpt *string `json:"excerpt,omitempty"`
	Tags    *Tags   `json:"tags,omitempty"`
}

// Validate requires at least one of title/body, and rejects blank values for
// whichever of them is present.
func (p Patch) Validate() error {
	if p.Title == nil && p.Body == nil {
		return invalid(MsgPatchFieldRequired)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid(MsgTitleEmpty)
	}
	if p.Body != nil && strings.TrimSpace(*p.Body) == "" {
		return invalid(MsgBodyEmpty)
	}
	return nil
}

// NewPost validates in and builds a post with the given id and timestamps.
func NewPost(in Input, id string, now time.Time) (Post, error) {
	if err := in.Validate(); err != nil {
		return Post{}, err
	}
	if id == "" {
		return Post{}, fmt.Errorf("post id cannot be empty")
	}

	p := Post{
		ID:        id,
		Title:     strings.TrimSpace(in.Title),
		Body:      strings.TrimSpace(in.Body),
		Excerpt:   "",
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Tags != nil {
		p.Tags = NormalizeTags(*in.Tags)
	}
	return p, nil
}

// ApplyUpdate returns p with title and body replaced from in. Excerpt and
// tags are replaced only when in carries them. ID and CreatedAt never change.
func ApplyUpdate(p Post, in Input, now time.Time) (Post, error) {
	if err := in.Validate(); err != nil {
		return Post{}, err
	}

	out := p.Clone()
	out.Title = strings.TrimSpace(in.Title)
	out.Body = strings.TrimSpace(in.Body)
	if in.Excerpt != nil {
		out.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Tags != nil {
		out.Tags = NormalizeTags(*in.Tags)
	}
	out.UpdatedAt = now
	return out, nil
}

// ApplyPatch returns p with only the provided fields replaced.
// UpdatedAt is always refreshed.
func ApplyPatch(p Post, patch Patch, now time.Time) (Post, error) {
	if err := patch.Validate(); err != nil {
		return Post{}, err
	}

	out := p.Clone()
	if patch.Title != nil {
		out.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Body != nil {
		out.Body = strings.TrimSpace(*patch.Body)
	}
	if patch.Excerpt != nil {
		out.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Tags != nil {
		out.Tags = NormalizeTags(*patch.Tags)
	}
	out.UpdatedAt = now
	return out, nil
}

// Store is the operation contract shared by every storage backend.
// Implementations must be safe for concurrent use.
type Store interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id string) (Post, error)
	Create(ctx context.Context, in Input) (Post, error)
	Update(ctx context.Context, id string, in Input) (Post, error)
	Patch(ctx context.Context, id string, patch Patch) (Post, error)
	Delete(ctx context.Context, id string) (Post, error)
}
