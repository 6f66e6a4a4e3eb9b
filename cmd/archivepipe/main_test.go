package main

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/archivepipe/pkg/models"
	"github.com/ajitpratap0/archivepipe/pkg/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{v: viper.New()}
	root := newRootCommand(a)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	a.finish()
	return out.String(), err
}

func exampleArchive(t *testing.T) string {
	return testutil.WriteArchive(t,
		testutil.File("a.txt", "hello"),
		testutil.Entry{Name: "b.jpg", Data: testutil.JPEGBytes(17)},
		testutil.File("notes.md", "# notes"),
	)
}

func TestTextCommandPrintsRecords(t *testing.T) {
	out, err := run(t, "text", exampleArchive(t))
	require.NoError(t, err)

	var records []models.TextRecord
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r models.TextRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		records = append(records, r)
	}
	require.Len(t, records, 1)
	assert.Equal(t, "a.txt", records[0].FileName)
	assert.Equal(t, "hello", records[0].Content)
}

func TestImagesExportAndInspect(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "images", "--out", dir, exampleArchive(t))
	require.NoError(t, err)

	var summary resultSummary
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &summary))
	assert.Equal(t, int64(1), summary.Rows)
	assert.Equal(t, filepath.Join(dir, "archive.image.parquet"), summary.Destination)

	out, err = run(t, "inspect", summary.Destination)
	require.NoError(t, err)

	var table tableSummary
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	assert.Equal(t, int64(1), table.Rows)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, "payload", table.Columns[2].Name)
}

func TestFormatFlag(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "text.avro")

	_, err := run(t, "--format", "avro", "text", "--out", dest, exampleArchive(t))
	require.NoError(t, err)

	out, err := run(t, "inspect", dest)
	require.NoError(t, err)
	assert.Contains(t, out, `"format":"avro"`)
}

func TestOutputExtensionPicksFormat(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "text.avro")

	_, err := run(t, "text", "--out", dest, exampleArchive(t))
	require.NoError(t, err)

	out, err := run(t, "inspect", dest)
	require.NoError(t, err)
	assert.Contains(t, out, `"format":"avro"`)
	assert.Contains(t, out, `"rows":1`)
}

func TestConflictingOutputExtensionFails(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "text.avro")

	out, err := run(t, "--format", "parquet", "text", "--out", dest, exampleArchive(t))
	require.Error(t, err)
	assert.Contains(t, out, `"error_class":"value"`)
}

func TestMissingArchiveFails(t *testing.T) {
	out, err := run(t, "images", filepath.Join(t.TempDir(), "missing.zip"))
	require.Error(t, err)
	assert.Contains(t, out, `"error_class":"io"`)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := run(t, "--format", "orc", "text", exampleArchive(t))
	assert.Error(t, err)
}
