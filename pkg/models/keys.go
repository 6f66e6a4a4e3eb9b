package models

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// KeyGenerator produces record keys. Implementations used concurrently by
// independent pipeline invocations must be safe for concurrent use.
type KeyGenerator interface {
	NewKey() string
}

// KeyGeneratorFunc adapts a function to KeyGenerator.
type KeyGeneratorFunc func() string

// NewKey calls f.
func (f KeyGeneratorFunc) NewKey() string { return f() }

// UUIDKeys generates random version 4 UUID strings.
type UUIDKeys struct{}

// NewKey returns a fresh random UUID.
func (UUIDKeys) NewKey() string {
	return uuid.NewString()
}

// SequentialKeys generates "<prefix>-<n>" keys starting at 1. It is
// deterministic and intended for tests and reproducible fixtures.
type SequentialKeys struct {
	Prefix string
	n      atomic.Int64
}

// NewKey returns the next key in the sequence.
func (s *SequentialKeys) NewKey() string {
	return fmt.Sprintf("%s-%d", s.Prefix, s.n.Add(1))
}
