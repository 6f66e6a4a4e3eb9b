package frame

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/ajitpratap0/archivepipe/pkg/models"
)

// Column names shared by both frame layouts.
const (
	ColumnKey      = "key"
	ColumnFileName = "file_name"
	ColumnPayload  = "payload"
	ColumnContent  = "content"
)

var (
	imageSchema = arrow.NewSchema([]arrow.Field{
		{Name: ColumnKey, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: ColumnFileName, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: ColumnPayload, Type: arrow.BinaryTypes.Binary, Nullable: true},
	}, nil)

	textSchema = arrow.NewSchema([]arrow.Field{
		{Name: ColumnKey, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: ColumnFileName, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: ColumnContent, Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
)

// ImageSchema is key:utf8, file_name:utf8, payload:binary, all nullable.
func ImageSchema() *arrow.Schema {
	return imageSchema
}

// TextSchema is key:utf8, file_name:utf8, content:utf8, all nullable.
func TextSchema() *arrow.Schema {
	return textSchema
}

// SchemaFor returns the frame schema for records of kind.
func SchemaFor(kind models.Kind) *arrow.Schema {
	if kind == models.KindText {
		return textSchema
	}
	return imageSchema
}
