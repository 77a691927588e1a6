package redisstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dyluth/quill/pkg/posts"
)

// Serialization helpers for converting between posts and Redis hashes.
//
// Scalar fields are stored as individual hash fields; tags are JSON-encoded
// into a single field. Timestamps use RFC3339Nano so no precision is lost.

// PostToHash converts a Post to a Redis hash.
func PostToHash(p posts.Post) (map[string]interface{}, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	return map[string]interface{}{
		"id":         p.ID,
		"title":      p.Title,
		"body":       p.Body,
		"excerpt":    p.Excerpt,
		"tags":       string(tagsJSON),
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// HashToPost converts a Redis hash back to a Post.
func HashToPost(hash map[string]string) (posts.Post, error) {
	if hash["id"] == "" {
		return posts.Post{}, fmt.Errorf("missing id field")
	}

	var tags []string
	if tagsJSON := hash["tags"]; tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return posts.Post{}, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	// Empty slice instead of nil for consistent JSON output
	if tags == nil {
		tags = []string{}
	}

	createdAt, err := time.Parse(time.RFC3339Nano, hash["created_at"])
	if err != nil {
		return posts.Post{}, fmt.Errorf("invalid created_at field: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, hash["updated_at"])
	if err != nil {
		return posts.Post{}, fmt.Errorf("invalid updated_at field: %w", err)
	}

	return posts.Post{
		ID:        hash["id"],
		Title:     hash["title"],
		Body:      hash["body"],
		Excerpt:   hash["excerpt"],
		Tags:      tags,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
