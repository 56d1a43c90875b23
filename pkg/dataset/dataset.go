// Package dataset persists rows with geometry-typed columns as Arrow IPC
// files.
//
// A dataset schema is declared as a list of column specs. A column is either
// a plain Arrow-typed column or a geometry column bound to a udt.Codec; in
// the latter case the column's storage type is the codec's struct layout and
// the codec's display name and bridge key are attached as field metadata.
// Readers resolve the codec back from that metadata, so geometry values
// round-trip through storage without the caller naming codecs twice.
package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/udt"
)

// Field metadata keys linking a storage column to its codec.
const (
	// MetaKeyUDT holds the codec display name on geometry columns
	MetaKeyUDT = "geocol.udt"
	// MetaKeyBridge holds the codec bridge key on geometry columns
	MetaKeyBridge = "geocol.bridge"
)

// ColumnSpec declares one column of a dataset.
type ColumnSpec struct {
	// Name is the column name
	Name string

	// Type is the storage type for plain columns. Ignored when Codec is set.
	Type arrow.DataType

	// Codec marks the column as a geometry column with the codec's layout
	Codec udt.Codec

	// Nullable allows null rows in this column
	Nullable bool
}

// buildSchema converts column specs into the Arrow schema written to disk.
func buildSchema(cols []ColumnSpec) (*arrow.Schema, error) {
	if len(cols) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "dataset requires at least one column")
	}
	fields := make([]arrow.Field, len(cols))
	seen := make(map[string]struct{}, len(cols))
	for i, col := range cols {
		if col.Name == "" {
			return nil, errors.Newf(errors.ErrorTypeConfig, "column %d has no name", i)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, errors.Newf(errors.ErrorTypeConfig, "duplicate column name %q", col.Name)
		}
		seen[col.Name] = struct{}{}

		if col.Codec != nil {
			fields[i] = arrow.Field{
				Name:     col.Name,
				Type:     col.Codec.Schema(),
				Nullable: col.Nullable,
				Metadata: arrow.NewMetadata(
					[]string{MetaKeyUDT, MetaKeyBridge},
					[]string{col.Codec.Name(), col.Codec.BridgeKey()},
				),
			}
			continue
		}
		if col.Type == nil {
			return nil, errors.Newf(errors.ErrorTypeConfig, "column %q has neither type nor codec", col.Name)
		}
		fields[i] = arrow.Field{Name: col.Name, Type: col.Type, Nullable: col.Nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}

// codecsForSchema resolves the registered codec for every geometry column in
// a stored schema, nil for plain columns.
func codecsForSchema(schema *arrow.Schema) ([]udt.Codec, error) {
	codecs := make([]udt.Codec, schema.NumFields())
	for i := 0; i < schema.NumFields(); i++ {
		field := schema.Field(i)
		idx := field.Metadata.FindKey(MetaKeyUDT)
		if idx < 0 {
			continue
		}
		name := field.Metadata.Values()[idx]
		codec, ok := udt.Lookup(name)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData,
				"column %q: no codec registered for type %q", field.Name, name)
		}
		codecs[i] = codec
	}
	return codecs, nil
}
