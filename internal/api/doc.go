// Package api exposes a posts.Store over HTTP.
//
// Routes (all JSON):
//
//	GET    /api/health
//	GET    /api/posts
//	POST   /api/posts
//	GET    /api/posts/{id}
//	PUT    /api/posts/{id}
//	PATCH  /api/posts/{id}
//	DELETE /api/posts/{id}
//
// Errors are returned as {"error": "..."} with 400 for invalid input or
// malformed bodies, 404 for unknown posts and 500 for anything else.
// Request bodies may be JSON or application/x-www-form-urlencoded.
package api
