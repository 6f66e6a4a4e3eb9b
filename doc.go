// Package archivepipe turns zip archives into columnar files.
//
// It reads an archive's central directory, walks the entries strictly in
// order, keeps the text (.txt) or image (.jpg, .jpeg) entries, and hands them
// on as keyed records. Image records become Apache Arrow batches with the
// schema key:utf8, file_name:utf8, payload:binary, and either frame can be
// written to a Parquet, Arrow IPC or Avro file on local disk, S3 or Cloud
// Storage.
//
// # Architecture
//
//   - pkg/archive: zip reader and a cursor that keeps one entry open at a time
//   - pkg/extract: generic extractor with suffix matching and key injection
//   - pkg/frame: Arrow conversion and the Frame/Session execution model
//   - pkg/formats/columnar: buffered encoders with a single final flush
//   - pkg/storage: local, S3 and GCS sinks
//   - pkg/pipeline: the public operations and boundary error classes
//   - internal/pipeline: bounded concurrent runs over many archives
//
// # Quick Start
//
//	import "github.com/ajitpratap0/archivepipe/pkg/pipeline"
//
//	p := pipeline.New()
//
//	texts, err := p.ExtractText(ctx, "docs.zip")
//	if err != nil {
//	    return err
//	}
//
//	batches, err := p.ExtractImages(ctx, "photos.zip")
//	if err != nil {
//	    return err
//	}
//	defer frame.ReleaseAll(batches)
//
//	res, err := p.ExportImages(ctx, "photos.zip", "photos.parquet")
//
// # Command Line
//
//	archivepipe text docs.zip
//	archivepipe images --out out/ --format parquet photos.zip more.zip
//	archivepipe inspect out/photos.image.parquet
//
// # Errors
//
// Failures are typed internally (io, archive_format, encoding,
// serialization, custom) and leave pkg/pipeline as a BoundaryError of class
// io or value. No operation retries, skips entries, or returns partial
// results.
package archivepipe
