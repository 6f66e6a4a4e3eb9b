package archiveerrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "nothing"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeEncoding, "bad name")
	outer := Wrap(inner, ErrorTypeIO, "outer")

	require.NotNil(t, outer)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Equal(t, ErrorTypeIO, outer.Type)
	assert.True(t, errors.Is(outer, inner))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"without cause", New(ErrorTypeArchiveFormat, "corrupt directory"), "archive_format: corrupt directory"},
		{"with cause", Wrap(io.ErrUnexpectedEOF, ErrorTypeIO, "short read"), "io: short read: unexpected EOF"},
		{"formatted", Newf(ErrorTypeSerialization, "column %d rejected", 2), "serialization: column 2 rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsTypeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("extract: %w", New(ErrorTypeEncoding, "invalid content"))

	assert.True(t, IsType(err, ErrorTypeEncoding))
	assert.False(t, IsType(err, ErrorTypeIO))
	assert.Equal(t, ErrorTypeEncoding, TypeOf(err))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeIO, "write failed").
		WithDetail("path", "/tmp/out.parquet").
		WithDetail("bytes", 42)

	assert.Equal(t, "/tmp/out.parquet", err.Details["path"])
	assert.Equal(t, 42, err.Details["bytes"])
	assert.NotEmpty(t, err.Stack)
}
