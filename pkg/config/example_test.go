package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/archivepipe/pkg/config"
)

// ExampleDefault demonstrates the default configuration.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Format: %q\n", cfg.Output.Format)
	fmt.Printf("Compression: %q\n", cfg.Output.Compression)
	fmt.Printf("Max entry bytes: %d\n", cfg.Archive.MaxEntryBytes)

	// Output:
	// Format: ""
	// Compression: ""
	// Max entry bytes: 0
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Output.Format = "avro"
	cfg.Output.Compression = "deflate"

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println(cfg.WriterConfig().Format)

	// Output:
	// avro
}
