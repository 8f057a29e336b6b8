// Package kv defines the durable key-value port the expense repository
// persists through. Adapters live in subpackages and in internal/storage.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no value was ever written under key.
var ErrNotFound = errors.New("kv: key not found")

// Ports for outbound adapters.
type (
	Reader interface {
		// Read returns the stored bytes or ErrNotFound.
		Read(ctx context.Context, key string) ([]byte, error)
	}

	Writer interface {
		// Write replaces the value under key. A nil error means the value
		// is durable.
		Write(ctx context.Context, key string, value []byte) error
	}

	Store interface {
		Reader
		Writer
	}
)
