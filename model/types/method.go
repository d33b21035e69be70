package types

import (
	"context"
	"reflect"
	"strings"
)

type Signatures []Signature

// Lookup returns a signature by case-insensitive name.
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if strings.EqualFold(sig.Name, name) {
			return sig
		}
	}
	return nil
}

// Signature	method signature
type Signature struct {
	Name        string
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// NewInput allocates a new input value for the signature.
func (s *Signature) NewInput() interface{} {
	return newValue(s.Input)
}

// NewOutput allocates a new output value for the signature.
func (s *Signature) NewOutput() interface{} {
	return newValue(s.Output)
}

func newValue(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Interface()
}

// Executable is a function that can be executed
type Executable func(context context.Context, input, output interface{}) error
