package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/archivepipe/pkg/formats/columnar"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archivepipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.WriterConfig().Format, "format follows the destination")
	assert.GreaterOrEqual(t, cfg.Performance.GetWorkers(), 1)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("TEST_ARCHIVEPIPE_REGION", "eu-west-1")

	path := writeConfig(t, `
archive:
  max_entry_bytes: 1048576
output:
  format: arrow
  compression: zstd
storage:
  s3_region: ${TEST_ARCHIVEPIPE_REGION}
performance:
  workers: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1048576), cfg.Archive.MaxEntryBytes)
	assert.Equal(t, "arrow", cfg.Output.Format)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3Region)
	assert.Equal(t, 3, cfg.Performance.GetWorkers())
	assert.Equal(t, "info", cfg.Logging.Level, "untouched sections keep defaults")

	wc := cfg.WriterConfig()
	assert.Equal(t, columnar.Arrow, wc.Format)
	assert.Equal(t, "zstd", wc.Compression)
	assert.Equal(t, "eu-west-1", wc.Storage.S3Region)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"format":      "output:\n  format: orc\n",
		"entry bytes": "archive:\n  max_entry_bytes: -1\n",
		"sample rate": "observability:\n  tracing_sample_rate: 2\n",
		"encoding":    "logging:\n  encoding: xml\n",
		"yaml":        "output: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_A", "x")
	assert.Equal(t, "x-y-", substituteEnvVars("${TEST_A}-y-${TEST_UNSET_VAR}"))
	assert.Equal(t, "no vars", substituteEnvVars("no vars"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Output.Format = "avro"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "avro", loaded.Output.Format)
}
