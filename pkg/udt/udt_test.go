package udt_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/geometry"
	"github.com/visionlake/geocol/pkg/record"
	"github.com/visionlake/geocol/pkg/udt"
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{"point", "box2d", "box3d", "mask"} {
		codec, ok := udt.Lookup(name)
		require.True(t, ok, "codec %s not registered", name)
		assert.Equal(t, name, codec.Name())

		byBridge, ok := udt.LookupBridge(codec.BridgeKey())
		require.True(t, ok)
		assert.Equal(t, codec.Name(), byBridge.Name())
	}

	_, ok := udt.Lookup("nope")
	assert.False(t, ok)
}

func TestFor(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{geometry.NewPoint(1, 2, 3), "point"},
		{geometry.Box2d{XMax: 1, YMax: 1}, "box2d"},
		{geometry.Box3d{Length: 1, Width: 1, Height: 1}, "box3d"},
		{geometry.Mask{Type: geometry.MaskRLE}, "mask"},
	}
	for _, tt := range tests {
		codec, ok := udt.For(tt.value)
		require.True(t, ok, "no codec for %T", tt.value)
		assert.Equal(t, tt.want, codec.Name())
	}

	_, ok := udt.For("not a geometry value")
	assert.False(t, ok)
}

func TestCodecsOrdered(t *testing.T) {
	codecs := udt.Codecs()
	require.Len(t, codecs, 4)

	names := make([]string, len(codecs))
	for i, c := range codecs {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"box2d", "box3d", "mask", "point"}, names)
}

func TestPointSchema(t *testing.T) {
	schema := udt.PointType{}.Schema()
	require.Equal(t, 3, schema.NumFields())
	for i, name := range []string{"x", "y", "z"} {
		field := schema.Field(i)
		assert.Equal(t, name, field.Name)
		assert.Equal(t, arrow.PrimitiveTypes.Float64, field.Type)
		assert.False(t, field.Nullable)
	}
}

func TestBox2dSchema(t *testing.T) {
	schema := udt.Box2dType{}.Schema()
	require.Equal(t, 4, schema.NumFields())
	for i, name := range []string{"xmin", "ymin", "xmax", "ymax"} {
		field := schema.Field(i)
		assert.Equal(t, name, field.Name)
		assert.Equal(t, arrow.PrimitiveTypes.Float64, field.Type)
		assert.False(t, field.Nullable)
	}
}

func TestBox3dSchema(t *testing.T) {
	schema := udt.Box3dType{}.Schema()
	require.Equal(t, 5, schema.NumFields())

	center := schema.Field(0)
	assert.Equal(t, "center", center.Name)
	assert.True(t, arrow.TypeEqual(udt.PointType{}.Schema(), center.Type))
	assert.False(t, center.Nullable)

	for i, name := range []string{"length", "width", "height", "heading"} {
		field := schema.Field(i + 1)
		assert.Equal(t, name, field.Name)
		assert.Equal(t, arrow.PrimitiveTypes.Float64, field.Type)
		assert.False(t, field.Nullable)
	}
}

func TestMaskSchema(t *testing.T) {
	schema := udt.MaskType{}.Schema()
	require.Equal(t, 5, schema.NumFields())

	tag := schema.Field(0)
	assert.Equal(t, "type", tag.Name)
	assert.Equal(t, arrow.PrimitiveTypes.Int16, tag.Type)
	assert.False(t, tag.Nullable)

	for i, name := range []string{"height", "width"} {
		field := schema.Field(i + 1)
		assert.Equal(t, name, field.Name)
		assert.Equal(t, arrow.PrimitiveTypes.Int32, field.Type)
		assert.False(t, field.Nullable)
	}

	polygon := schema.Field(3)
	assert.Equal(t, "polygon", polygon.Name)
	assert.True(t, polygon.Nullable)
	outer, ok := polygon.Type.(*arrow.ListType)
	require.True(t, ok)
	inner, ok := outer.Elem().(*arrow.ListType)
	require.True(t, ok)
	assert.Equal(t, arrow.PrimitiveTypes.Float32, inner.Elem())

	rle := schema.Field(4)
	assert.Equal(t, "rle", rle.Name)
	assert.True(t, rle.Nullable)
	runs, ok := rle.Type.(*arrow.ListType)
	require.True(t, ok)
	assert.Equal(t, arrow.PrimitiveTypes.Int32, runs.Elem())
}

func TestPointRoundTrip(t *testing.T) {
	codec := udt.PointType{}
	p := geometry.NewPoint(1, 2, 3)

	rec := codec.Encode(p)
	assert.Equal(t, []string{"x", "y", "z"}, rec.Names())
	x, _ := rec.Get("x")
	assert.Equal(t, 1.0, x)

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPointDecodeMalformed(t *testing.T) {
	codec := udt.PointType{}

	_, err := codec.Decode(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	// Wrong arity
	_, err = codec.Decode(record.New(2).Append("x", 1.0).Append("y", 2.0))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	// Right arity, wrong field name
	_, err = codec.Decode(record.New(3).Append("x", 1.0).Append("y", 2.0).Append("w", 3.0))
	require.Error(t, err)

	// Right shape, wrong value type
	_, err = codec.Decode(record.New(3).Append("x", "1").Append("y", 2.0).Append("z", 3.0))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestBox2dRoundTrip(t *testing.T) {
	codec := udt.Box2dType{}
	b, err := geometry.NewBox2d(0, 0, 10, 5)
	require.NoError(t, err)

	rec := codec.Encode(b)
	assert.Equal(t, []string{"xmin", "ymin", "xmax", "ymax"}, rec.Names())

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestBox2dDecodeDoesNotRevalidate(t *testing.T) {
	// Stored records are trusted on geometry; an inverted box decodes as-is.
	codec := udt.Box2dType{}
	rec := record.New(4).
		Append("xmin", 10.0).
		Append("ymin", 0.0).
		Append("xmax", 0.0).
		Append("ymax", 5.0)

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, geometry.Box2d{XMin: 10, YMin: 0, XMax: 0, YMax: 5}, got)
}

func TestBox3dRoundTrip(t *testing.T) {
	codec := udt.Box3dType{}
	b, err := geometry.NewBox3d(geometry.NewPoint(1, 2, 3), 4, 2, 1.5, 0.25)
	require.NoError(t, err)

	rec := codec.Encode(b)
	require.Equal(t, 5, rec.Len())

	center, ok := rec.Get("center")
	require.True(t, ok)
	require.IsType(t, &record.Record{}, center)
	cx, _ := center.(*record.Record).Get("x")
	assert.Equal(t, 1.0, cx)

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestBox3dDecodeMalformedCenter(t *testing.T) {
	codec := udt.Box3dType{}

	rec := record.New(5).
		Append("center", "not a record").
		Append("length", 1.0).
		Append("width", 1.0).
		Append("height", 1.0).
		Append("heading", 0.0)
	_, err := codec.Decode(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	// Malformed nested point record
	rec = record.New(5).
		Append("center", record.New(2).Append("x", 1.0).Append("y", 2.0)).
		Append("length", 1.0).
		Append("width", 1.0).
		Append("height", 1.0).
		Append("heading", 0.0)
	_, err = codec.Decode(rec)
	require.Error(t, err)
}

func TestMaskEncodePolygon(t *testing.T) {
	codec := udt.MaskType{}
	m, err := geometry.FromPolygon([][]float32{{0, 0, 10, 0, 10, 10}}, 100, 100)
	require.NoError(t, err)

	rec, err := codec.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"type", "height", "width", "polygon", "rle"}, rec.Names())

	tag, _ := rec.Get("type")
	assert.Equal(t, int16(geometry.MaskPolygon), tag)
	assert.False(t, rec.IsNull("polygon"))
	assert.True(t, rec.IsNull("rle"))

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMaskEncodeRLE(t *testing.T) {
	codec := udt.MaskType{}
	m, err := geometry.FromRLE([]int32{3, 2, 3}, 4, 2)
	require.NoError(t, err)

	rec, err := codec.Encode(m)
	require.NoError(t, err)
	assert.True(t, rec.IsNull("polygon"))
	assert.False(t, rec.IsNull("rle"))

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestMaskEncodeCOCORLE(t *testing.T) {
	codec := udt.MaskType{}
	m, err := geometry.FromCOCORLE([]int32{1, 2, 1}, 2, 2)
	require.NoError(t, err)

	rec, err := codec.Encode(m)
	require.NoError(t, err)

	got, err := codec.Decode(rec)
	require.NoError(t, err)
	assert.Equal(t, geometry.MaskCOCORLE, got.Type)
	assert.Equal(t, m, got)
}

func TestMaskEncodeUnknownTag(t *testing.T) {
	codec := udt.MaskType{}
	_, err := codec.Encode(geometry.Mask{Type: geometry.MaskKind(9), Width: 4, Height: 4})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	assert.Contains(t, err.Error(), "unrecognized mask type")
}

func TestMaskDecodeUnknownTag(t *testing.T) {
	codec := udt.MaskType{}
	rec := record.New(5).
		Append("type", int16(9)).
		Append("height", int32(4)).
		Append("width", int32(4)).
		Append("polygon", nil).
		Append("rle", []int32{16})

	_, err := codec.Decode(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	assert.Contains(t, err.Error(), "unrecognized mask type")
}

func TestMaskDecodeNullPayload(t *testing.T) {
	codec := udt.MaskType{}

	// Polygon kind with null polygon column
	rec := record.New(5).
		Append("type", int16(geometry.MaskPolygon)).
		Append("height", int32(4)).
		Append("width", int32(4)).
		Append("polygon", nil).
		Append("rle", nil)
	_, err := codec.Decode(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	// RLE kind with null rle column
	rec = record.New(5).
		Append("type", int16(geometry.MaskRLE)).
		Append("height", int32(4)).
		Append("width", int32(4)).
		Append("polygon", nil).
		Append("rle", nil)
	_, err = codec.Decode(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestMaskDecodeInconsistentRuns(t *testing.T) {
	// Runs not covering width*height fail during reconstruction.
	codec := udt.MaskType{}
	rec := record.New(5).
		Append("type", int16(geometry.MaskRLE)).
		Append("height", int32(4)).
		Append("width", int32(4)).
		Append("polygon", nil).
		Append("rle", []int32{3})

	_, err := codec.Decode(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestEncodeValueRejectsWrongType(t *testing.T) {
	for _, codec := range udt.Codecs() {
		_, err := codec.EncodeValue(struct{}{})
		require.Error(t, err, "codec %s accepted a foreign value", codec.Name())
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	}
}

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	box2d, err := geometry.NewBox2d(1, 2, 3, 4)
	require.NoError(t, err)
	mask, err := geometry.FromRLE([]int32{8}, 4, 2)
	require.NoError(t, err)

	values := []interface{}{
		geometry.NewPoint(-1, 0.5, 2),
		box2d,
		mask,
	}
	for _, v := range values {
		codec, ok := udt.For(v)
		require.True(t, ok)

		rec, err := codec.EncodeValue(v)
		require.NoError(t, err)

		got, err := codec.DecodeValue(rec)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
