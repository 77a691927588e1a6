package api

import "github.com/dyluth/quill/pkg/posts"

// APIError is the payload for every non-2xx response.
type APIError struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`    // "ok" or "unavailable"
	Uptime    float64 `json:"uptime"`    // seconds since the server was built
	Timestamp string  `json:"timestamp"` // RFC3339, UTC
}

// DeleteResponse is returned by a successful DELETE.
type DeleteResponse struct {
	OK      bool       `json:"ok"`
	Removed posts.Post `json:"removed"`
}

// Error messages that are not validation failures.
const (
	MsgInternal         = "internal server error"
	MsgNotFound         = "Not Found"
	MsgMethodNotAllowed = "method not allowed"
)
