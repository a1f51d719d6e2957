package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrGeneration    = errors.New("recipe generation failed")
	ErrPersistence   = errors.New("recipe persistence failed")
	ErrBusy          = errors.New("a recipe is already being generated")
	ErrClosed        = errors.New("session is closed")
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// Failure is the error reported to the presentation layer when a command
// could not complete. Kind is ErrGeneration or ErrPersistence.
type Failure struct {
	Op   string
	Kind error
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %v", f.Op, f.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", f.Op, f.Kind, f.Err)
}

// Unwrap exposes both the failure kind and its cause to errors.Is/As.
func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// NewFailure wraps err as a failure of the given kind.
func NewFailure(op string, kind, err error) *Failure {
	return &Failure{Op: op, Kind: kind, Err: err}
}
