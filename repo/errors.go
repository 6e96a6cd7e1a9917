package repo

import (
	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/db"
)

// translate converts a db sentinel into the apperr kind callers see.
// notFound is the message used when no row matched.
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return apperr.NotFound(notFound)
	case db.IsDuplicateKey(err):
		return apperr.New(apperr.ErrConflict, "Duplicate entry", err)
	case db.IsForeignKeyViolation(err):
		return apperr.New(apperr.ErrInvalidInput, "Referenced record does not exist", err)
	case db.IsCheckViolation(err):
		return apperr.New(apperr.ErrInvalidInput, "Value violates a table constraint", err)
	default:
		return apperr.Internal(err)
	}
}

func conflict(cause error, message string) error {
	return apperr.New(apperr.ErrConflict, message, cause)
}
