package types

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceNotFound is returned when no executor service is registered under a name.
	ErrServiceNotFound = errors.New("service not registered")
	// ErrMethodNotFound is returned when a service does not expose a method.
	ErrMethodNotFound = errors.New("method not found")
	// ErrInvalidArgument is returned when an executable gets an input or output of the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)

func NewMethodNotFoundError(name string) error {
	return fmt.Errorf("%w: %v", ErrMethodNotFound, name)
}

func NewServiceNotFoundError(name string) error {
	return fmt.Errorf("%w: %v", ErrServiceNotFound, name)
}

func NewInvalidInputError(in interface{}) error {
	return fmt.Errorf("%w: input %T", ErrInvalidArgument, in)
}

func NewInvalidOutputError(out interface{}) error {
	return fmt.Errorf("%w: output %T", ErrInvalidArgument, out)
}
