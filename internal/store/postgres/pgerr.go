package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dyluth/quill/pkg/posts"
)

// SQLSTATE codes the store translates into posts errors.
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

func pgErrorCode(err error) string {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// constraintError maps a failed INSERT/UPDATE onto the matching posts error,
// or returns nil when err is not a constraint violation we know about.
// The CHECK constraints mirror posts validation, so they only fire for rows
// written around this package.
func constraintError(err error) error {
	switch pgErrorCode(err) {
	case uniqueViolation:
		return posts.ErrDuplicateID
	case checkViolation:
		return &posts.ValidationError{Message: posts.MsgTitleAndBodyRequired}
	default:
		return nil
	}
}
