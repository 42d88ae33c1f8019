package rest

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when the entity text cannot be parsed.
	ErrMalformed = errors.New("malformed entity")
	// ErrMissingName is returned when a node has no identifier.
	ErrMissingName = errors.New("node has no name")
	// ErrUnsupported is returned when a node does not have the node shape.
	ErrUnsupported = errors.New("unsupported node structure")
	// ErrCollision is returned when two nodes share a name and collisions are rejected.
	ErrCollision = errors.New("duplicate resource name")
)

// DecodeError describes where in the hierarchy document decoding failed.
type DecodeError struct {
	Path string // location of the offending node, e.g. "children[1].children[0]"
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode hierarchy: %v", e.Err)
	}
	return fmt.Sprintf("decode hierarchy at %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// CollisionError is returned by an Indexer using RejectCollisions.
type CollisionError struct {
	Name     string
	First    Resource
	Conflict Resource
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%v: %q at %q and %q", ErrCollision, e.Name, e.First.Breadcrumbs(), e.Conflict.Breadcrumbs())
}

func (e *CollisionError) Unwrap() error {
	return ErrCollision
}

func decodeErr(path string, err error) error {
	return &DecodeError{Path: path, Err: err}
}
