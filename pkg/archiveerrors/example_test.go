package archiveerrors_test

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
)

// Example demonstrates basic error creation.
func Example() {
	err := archiveerrors.New(archiveerrors.ErrorTypeEncoding, "entry name is not valid UTF-8").
		WithDetail("index", 3)

	fmt.Println(err.Error())

	// Output:
	// encoding: entry name is not valid UTF-8
}

// ExampleWrap shows how an underlying failure keeps its identity after wrapping.
func ExampleWrap() {
	err := archiveerrors.Wrap(fs.ErrNotExist, archiveerrors.ErrorTypeIO, "failed to open archive").
		WithDetail("path", "missing.zip")

	if archiveerrors.IsType(err, archiveerrors.ErrorTypeIO) {
		fmt.Println("io error")
	}
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Println("archive does not exist")
	}
	fmt.Println(err)

	// Output:
	// io error
	// archive does not exist
	// io: failed to open archive: file does not exist
}

// ExampleTypeOf lists the type of each failure domain.
func ExampleTypeOf() {
	errs := []error{
		archiveerrors.New(archiveerrors.ErrorTypeArchiveFormat, "corrupt central directory"),
		archiveerrors.New(archiveerrors.ErrorTypeSerialization, "column type rejected"),
		archiveerrors.Custom("caller aborted"),
		errors.New("plain"),
	}

	for _, err := range errs {
		fmt.Println(archiveerrors.TypeOf(err))
	}

	// Output:
	// archive_format
	// serialization
	// custom
	// custom
}
