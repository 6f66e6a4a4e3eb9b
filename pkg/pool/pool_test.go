package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type widget struct {
	n int
}

func TestPoolResetsOnPut(t *testing.T) {
	p := New(func() *widget { return &widget{} }, func(w *widget) { w.n = 0 })

	w := p.Get()
	w.n = 42
	p.Put(w)

	got := p.Get()
	assert.Equal(t, 0, got.n)
	p.Put(got)

	allocated, inUse, gets := p.Stats()
	assert.GreaterOrEqual(t, allocated, int64(1))
	assert.Equal(t, int64(0), inUse)
	assert.Equal(t, int64(2), gets)
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("encoded file")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Zero(t, again.Len())
	PutBuffer(again)
	PutBuffer(nil)
}

func TestOversizedBufferIsDropped(t *testing.T) {
	_, before, _ := BufferStats()

	big := GetBuffer()
	big.Grow(MaxPooledBuffer + 1)
	PutBuffer(big)

	_, after, _ := BufferStats()
	assert.Equal(t, before, after)
	assert.IsType(t, &bytes.Buffer{}, big)
}
