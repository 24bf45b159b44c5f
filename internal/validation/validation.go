// Package validation gates untrusted input before it reaches services or
// repositories. Every schema, whatever library backs it, reports problems in
// the same Failure shape.
package validation

import (
	"errors"
	"strings"
)

// Issue is a single schema violation. Path holds the keys and indices that
// lead from the input root to the offending value.
type Issue struct {
	Message string   `json:"message"`
	Path    []string `json:"path"`
}

type Issues []Issue

// Schema is anything that can check a value without failing on bad data.
// Data problems are reported as Issues; the error is reserved for misuse such
// as a broken schema or an input of the wrong kind.
type Schema interface {
	SafeParse(data any) (Issues, error)
}

// SchemaFunc adapts a function to Schema.
type SchemaFunc func(data any) (Issues, error)

func (f SchemaFunc) SafeParse(data any) (Issues, error) { return f(data) }

// Failure is returned by Validate when data violates the schema. Message is
// the first violation; Details lists all of them.
type Failure struct {
	Message string  `json:"message"`
	Details []Issue `json:"details"`
}

func (f *Failure) Error() string {
	if len(f.Details) > 0 && len(f.Details[0].Path) > 0 {
		return "validation failed: " + strings.Join(f.Details[0].Path, ".") + ": " + f.Message
	}
	return "validation failed: " + f.Message
}

var errNilSchema = errors.New("validation: nil schema")

// Validate runs data through schema. It returns nil when data is valid, a
// *Failure when it is not, and any other error from the schema unchanged.
func Validate(schema Schema, data any) error {
	if schema == nil {
		return errNilSchema
	}
	issues, err := schema.SafeParse(data)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return nil
	}
	return &Failure{Message: issues[0].Message, Details: issues}
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
