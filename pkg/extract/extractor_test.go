package extract

import (
	"context"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/archivepipe/pkg/archiveerrors"
	"github.com/ajitpratap0/archivepipe/pkg/models"
	"github.com/ajitpratap0/archivepipe/pkg/testutil"
)

func mixedArchive(t *testing.T) string {
	return testutil.WriteArchive(t,
		testutil.File("a.txt", "hello"),
		testutil.Entry{Name: "b.jpg", Data: testutil.JPEGBytes(17), Stored: true},
		testutil.File("notes.md", "# notes"),
		testutil.Entry{Name: "dir/c.txt", Data: []byte("héllo wörld"), Method: zstd.ZipMethodWinZip},
		testutil.File("d.jpeg", "jpeg-ish"),
		testutil.File("E.JPG", "upper case is not an image"),
		testutil.File("readme.txt.bak", "not text"),
	)
}

func TestTextSelectsTxtEntriesInOrder(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	records, err := Text(ctx, mixedArchive(t),
		WithKeyGenerator(&models.SequentialKeys{Prefix: "t"}),
		WithLogger(testutil.TestLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, []models.TextRecord{
		{Key: "t-1", FileName: "a.txt", Content: "hello"},
		{Key: "t-2", FileName: "dir/c.txt", Content: "héllo wörld"},
	}, records)
}

func TestImagesSelectsJpegEntriesInOrder(t *testing.T) {
	records, err := Images(context.Background(), mixedArchive(t),
		WithKeyGenerator(&models.SequentialKeys{Prefix: "i"}))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "b.jpg", records[0].FileName)
	assert.Equal(t, testutil.JPEGBytes(17), records[0].Payload)
	assert.Equal(t, "i-1", records[0].Key)
	assert.Equal(t, "d.jpeg", records[1].FileName)
	assert.Equal(t, []byte("jpeg-ish"), records[1].Payload)
}

func TestKeysDifferAcrossRuns(t *testing.T) {
	path := mixedArchive(t)

	first, err := Text(context.Background(), path)
	require.NoError(t, err)
	second, err := Text(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].FileName, second[i].FileName)
		assert.Equal(t, first[i].Content, second[i].Content)
		assert.NotEqual(t, first[i].Key, second[i].Key)
	}
}

func TestNoMatchesYieldsEmptyCollection(t *testing.T) {
	path := testutil.WriteArchive(t, testutil.File("notes.md", "x"))

	texts, err := Text(context.Background(), path)
	require.NoError(t, err)
	assert.NotNil(t, texts)
	assert.Empty(t, texts)

	images, err := Images(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestInvalidUTF8ContentFailsWholeExtraction(t *testing.T) {
	path := testutil.WriteArchive(t,
		testutil.File("good.txt", "fine"),
		testutil.Entry{Name: "bad.txt", Data: []byte{0xff, 0xfe, 0x00}},
	)

	records, err := Text(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeEncoding))
}

func TestInvalidUTF8ContentIsFineForImages(t *testing.T) {
	path := testutil.WriteArchive(t,
		testutil.Entry{Name: "raw.jpg", Data: []byte{0xff, 0xfe, 0x00}},
	)

	records, err := Images(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte{0xff, 0xfe, 0x00}, records[0].Payload)
}

func TestNonUTF8NameFailsEvenWhenNotMatching(t *testing.T) {
	path := testutil.WriteArchive(t,
		testutil.File("a.txt", "hello"),
		testutil.Entry{Name: "caf\xe9.md", Data: []byte("x"), NonUTF8: true},
	)

	_, err := Text(context.Background(), path)
	require.Error(t, err)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeEncoding))

	_, err = Images(context.Background(), path)
	require.Error(t, err)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeEncoding))
}

func TestMissingArchiveIsIOError(t *testing.T) {
	_, err := Images(context.Background(), "/nonexistent/archive.zip")
	require.Error(t, err)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeIO))
}

func TestMaxEntrySizeOption(t *testing.T) {
	path := testutil.WriteArchive(t, testutil.File("a.txt", "0123456789"))

	_, err := Text(context.Background(), path, WithMaxEntrySize(4))
	require.Error(t, err)
	assert.True(t, archiveerrors.IsType(err, archiveerrors.ErrorTypeArchiveFormat))
}

func TestSuffixMatcher(t *testing.T) {
	tests := []struct {
		name  string
		match bool
	}{
		{"a.jpg", true},
		{"a.jpeg", true},
		{"dir/b.jpg", true},
		{"a.JPG", false},
		{"a.jpg.txt", false},
		{"jpg", false},
		{".jpg", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, ImageSuffixes.Match(tt.name))
		})
	}
}

func TestCustomMatcher(t *testing.T) {
	path := testutil.WriteArchive(t,
		testutil.File("a.csv", "x,y"),
		testutil.File("b.txt", "text"),
	)

	x := New[models.TextRecord](models.KindText, MatcherFunc(func(name string) bool {
		return name == "a.csv"
	}), BuildText)

	records, err := x.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x,y", records[0].Content)
}

func TestDirectoriesAreSkipped(t *testing.T) {
	path := testutil.WriteArchive(t,
		testutil.Entry{Name: "photos/"},
		testutil.File("photos/a.txt", "inside"),
		testutil.Entry{Name: "odd.txt/"},
	)

	all := New[models.TextRecord](models.KindText, MatcherFunc(func(string) bool { return true }), BuildText)
	records, err := all.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "photos/a.txt", records[0].FileName)
}
