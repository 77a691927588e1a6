// Package posts defines the Post entity, its write inputs, and the Store
// contract every quill storage backend implements.
//
// # Overview
//
// A Post is a blog entry with a title, a body, an optional excerpt and an
// ordered list of tags. IDs are assigned by the store at creation and never
// change afterwards. CreatedAt is set once; UpdatedAt is refreshed by every
// successful Update or Patch.
//
// # Validation
//
// All input validation and normalization lives in this package so that it
// exists exactly once, regardless of backend:
//
//	in := posts.Input{Title: "Hello", Body: "World", Tags: posts.TagsOf("go, blog")}
//	p, err := posts.NewPost(in, uuid.NewString(), time.Now())
//
// Backends call NewPost, ApplyUpdate and ApplyPatch and only then persist the
// result. A validation failure therefore never mutates stored state.
//
// # Errors
//
// Stores return ErrNotFound for unknown IDs and a *ValidationError (which
// matches ErrInvalidInput via errors.Is) for missing or blank fields.
//
// # Ordering
//
// List returns posts newest-first by insertion order. Posts are never
// re-sorted on read.
package posts
