// Package storage defines how course plans are persisted for the HTTP
// service.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyp0633/termplan/plan"
)

// Error types
type ErrorType string

const (
	ErrNotFound      ErrorType = "not_found"
	ErrAlreadyExists ErrorType = "already_exists"
	ErrInvalidInput  ErrorType = "invalid_input"
)

// Error represents a storage-related error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a storage error of type ErrNotFound.
func IsNotFound(err error) bool {
	return isType(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is a storage error of type
// ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return isType(err, ErrAlreadyExists)
}

func isType(err error, t ErrorType) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Type == t
}

// Plan is a stored plan definition.
type Plan struct {
	ID         string
	Definition *plan.Definition
	// ETag changes whenever the definition changes. It is quoted, ready
	// for the HTTP header.
	ETag     string
	Created  time.Time
	Modified time.Time
}

// Storage is the interface that must be implemented by storage backends
type Storage interface {
	// GetPlan returns the plan with the given id.
	GetPlan(ctx context.Context, id string) (*Plan, error)
	// ListPlans returns every plan ordered by id.
	ListPlans(ctx context.Context) ([]*Plan, error)
	// CreatePlan stores a new plan and fails with ErrAlreadyExists if the
	// id is taken.
	CreatePlan(ctx context.Context, id string, def *plan.Definition) (*Plan, error)
	// PutPlan creates or replaces a plan. created is true when no plan
	// with the id existed, decided under the same lock as the write.
	PutPlan(ctx context.Context, id string, def *plan.Definition) (p *Plan, created bool, err error)
	// DeletePlan removes a plan.
	DeletePlan(ctx context.Context, id string) error
}
