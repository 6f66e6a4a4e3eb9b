// Package pipeline is the public entry point of archivepipe. It wires the
// archive reader, the record extractors, the columnar converter and the
// columnar writer into four operations and converts every failure into a
// BoundaryError before it leaves the package.
//
// # Overview
//
// The package provides:
//
//   - ExtractText: all .txt entries of an archive as text records
//   - ExtractImages: all .jpg/.jpeg entries as fully realized Arrow batches
//   - ExportImages and ExportText: the same frames written to a columnar file
//
// Each call is one invocation. An invocation reads exactly one archive,
// strictly in entry order, and either returns a complete result or an error;
// there are no partial results and no retries.
//
// # Basic Usage
//
//	p := pipeline.New(pipeline.WithLogger(logger.Get()))
//
//	texts, err := p.ExtractText(ctx, "docs.zip")
//	if err != nil {
//		var be *pipeline.BoundaryError
//		if errors.As(err, &be) && be.Class == pipeline.ClassIO {
//			// archive missing or unreadable
//		}
//		return err
//	}
//
//	batches, err := p.ExtractImages(ctx, "photos.zip")
//	if err != nil {
//		return err
//	}
//	defer frame.ReleaseAll(batches)
//
// Writing to a file or an object store:
//
//	res, err := p.ExportImages(ctx, "photos.zip", "s3://bucket/photos.parquet")
//
// # Errors
//
// Internally failures carry an archiveerrors.ErrorType. At this boundary they
// collapse into two classes: ClassIO for failures of the underlying storage
// and ClassValue for everything else (corrupt archives, undecodable text,
// encoder failures, cancellation). The message keeps the internal error text,
// and errors.As still reaches the typed *archiveerrors.Error underneath.
//
// # Keys
//
// Every record gets a fresh key. The default generator produces random
// UUIDs, so two runs over the same archive never share keys. Tests inject
// models.SequentialKeys through WithKeyGenerator.
package pipeline
