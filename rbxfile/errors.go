// Package rbxfile models a DataModel document: a tree of Instances carrying
// typed Properties, and the serialization pass that turns such a tree into
// a binary or XML place/model file through a pluggable codec.
package rbxfile

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrCycle           = errors.New("parent would create a cycle")
	ErrPathNotFound    = errors.New("path not found")
	ErrUnsupportedType = errors.New("unsupported value type")
	ErrTypeMismatch    = errors.New("value type does not match property type")
	ErrMissingHandler  = errors.New("no handler for wire type")
	ErrFieldMirror     = errors.New("value not mirrored to native field")
	ErrIntegrity       = errors.New("document integrity violated")
)

// CycleError is returned by SetParent when the new parent is the instance
// itself or one of its descendants. The tree is left unchanged.
type CycleError struct {
	Instance *Instance
	Parent   *Instance
}

func (e *CycleError) Error() string {
	if e.Instance == e.Parent {
		return fmt.Sprintf("cannot parent %s to itself: %v", e.Instance.FullName(), ErrCycle)
	}
	return fmt.Sprintf("cannot parent %s to %s: %v", e.Instance.FullName(), e.Parent.FullName(), ErrCycle)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// PathNotFoundError reports the first path segment that could not be found
// and the instance it was searched under.
type PathNotFoundError struct {
	Segment string
	Parent  *Instance
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("%s is not a valid member of %s", e.Segment, e.Parent.FullName())
}

func (e *PathNotFoundError) Unwrap() error { return ErrPathNotFound }

// UnsupportedTypeError reports a Go value with no entry in the closed
// property type table.
type UnsupportedTypeError struct {
	Value  any
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %T (%s)", ErrUnsupportedType, e.Value, e.Reason)
	}
	return fmt.Sprintf("%v: %T", ErrUnsupportedType, e.Value)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }

// TypeMismatchError is returned when a value is assigned to a property of
// a different kind.
type TypeMismatchError struct {
	Property string
	Want     PropertyType
	Got      PropertyType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %s: cannot assign %s to %s", e.Property, e.Got, e.Want)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// MissingHandlerError describes a property dropped from output because the
// codec has no handler for its wire type. It is reported, never returned.
type MissingHandlerError struct {
	Property string
	WireName string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("property %s: %v %q", e.Property, ErrMissingHandler, e.WireName)
}

func (e *MissingHandlerError) Unwrap() error { return ErrMissingHandler }

// IntegrityError aborts a write pass whose output could not be read back
// into the same tree.
type IntegrityError struct {
	Instance *Instance
	Reason   string
}

func (e *IntegrityError) Error() string {
	if e.Instance == nil {
		return fmt.Sprintf("%v: %s", ErrIntegrity, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrIntegrity, e.Instance.FullName(), e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
