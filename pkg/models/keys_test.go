package models

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDKeysAreFreshV4(t *testing.T) {
	var gen UUIDKeys
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		key := gen.NewKey()
		parsed, err := uuid.Parse(key)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())

		_, dup := seen[key]
		require.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
}

func TestSequentialKeys(t *testing.T) {
	gen := &SequentialKeys{Prefix: "k"}
	assert.Equal(t, "k-1", gen.NewKey())
	assert.Equal(t, "k-2", gen.NewKey())
}

func TestSequentialKeysConcurrent(t *testing.T) {
	gen := &SequentialKeys{Prefix: "c"}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		keys = make(map[string]struct{})
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := gen.NewKey()
				mu.Lock()
				keys[k] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, keys, 800)
}

func TestKeyGeneratorFunc(t *testing.T) {
	gen := KeyGeneratorFunc(func() string { return "fixed" })
	assert.Equal(t, "fixed", gen.NewKey())
}
