package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// NotFoundError is returned when a single-record lookup matches nothing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID == "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
}

// Is lets errors.Is(err, gorm.ErrRecordNotFound) keep working on translated errors.
func (e *NotFoundError) Is(target error) bool {
	return target == gorm.ErrRecordNotFound
}

// InvalidFieldError reports a sort or patch field the entity does not allow.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInvalidField(err error) bool {
	var target *InvalidFieldError
	return errors.As(err, &target)
}

// IsConstraintViolation reports whether the store rejected a write because of
// a uniqueness, foreign-key, not-null or check constraint. The error itself is
// never rewritten by the repository.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 23: integrity constraint violation
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "23"
	}
	return false
}
