package store

import (
	"github.com/google/uuid"

	"github.com/dyluth/quill/internal/clock"
)

// Options carries the collaborators every backend needs.
// Zero values are replaced by WithDefaults.
type Options struct {
	Clock clock.Clock
	NewID func() string
}

// WithDefaults fills unset fields with the system clock and UUIDv4 ids.
func (o Options) WithDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.System{}
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}
