// Package config provides configuration management for archivepipe.
//
// # Key Features
//
// - Config: one structure with a section per concern
// - Sections: Logging, Archive, Output, Storage, Observability, Performance
// - Environment variable substitution with ${VAR_NAME} syntax
// - Defaults and validation
//
// # Usage
//
// ## Loading a file
//
//	cfg, err := config.Load("archivepipe.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ## Environment Variable Substitution
//
//	output:
//	  format: ${ARCHIVEPIPE_FORMAT}
//	storage:
//	  s3_region: ${AWS_REGION}
//
// Unset variables substitute as the empty string, which then falls back to
// the default for that field.
//
// ## Wiring into the pipeline
//
//	p := pipeline.New(
//		pipeline.WithMaxEntrySize(cfg.Archive.MaxEntryBytes),
//		pipeline.WithWriterConfig(cfg.WriterConfig()),
//	)
//
// The core packages never read configuration themselves; the CLI loads a
// Config and passes the relevant values as options.
package config
