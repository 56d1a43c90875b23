package udt

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/geometry"
	"github.com/visionlake/geocol/pkg/record"
)

// Bridge keys locate counterpart codec implementations in the JVM runtime
// layer. They are opaque identifiers consumed by the cross-runtime bridge;
// do not parse or derive meaning from them.
const (
	pointBridgeKey = "ai.visionlake.sql.geocol.PointType"
	box2dBridgeKey = "ai.visionlake.sql.geocol.Box2dType"
	box3dBridgeKey = "ai.visionlake.sql.geocol.Box3dType"
	maskBridgeKey  = "ai.visionlake.sql.geocol.MaskType"
)

// PointType is the column codec for geometry.Point.
type PointType struct{}

// Name implements Codec.
func (PointType) Name() string { return "point" }

// BridgeKey implements Codec.
func (PointType) BridgeKey() string { return pointBridgeKey }

// Schema implements Codec.
func (PointType) Schema() *arrow.StructType {
	return arrow.StructOf(
		arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "y", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "z", Type: arrow.PrimitiveTypes.Float64},
	)
}

// Encode produces the columnar record for a point.
func (PointType) Encode(p geometry.Point) *record.Record {
	return record.New(3).
		Append("x", p.X).
		Append("y", p.Y).
		Append("z", p.Z)
}

// Decode reconstructs a point from its columnar record.
func (t PointType) Decode(rec *record.Record) (geometry.Point, error) {
	if err := checkArity(t.Name(), rec, 3); err != nil {
		return geometry.Point{}, err
	}
	x, err := float64Field(t.Name(), rec, "x")
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := float64Field(t.Name(), rec, "y")
	if err != nil {
		return geometry.Point{}, err
	}
	z, err := float64Field(t.Name(), rec, "z")
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.NewPoint(x, y, z), nil
}

// EncodeValue implements Codec.
func (t PointType) EncodeValue(v interface{}) (*record.Record, error) {
	p, ok := v.(geometry.Point)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "point codec: unsupported value type %T", v)
	}
	return t.Encode(p), nil
}

// DecodeValue implements Codec.
func (t PointType) DecodeValue(rec *record.Record) (interface{}, error) {
	return t.Decode(rec)
}

// Box2dType is the column codec for geometry.Box2d.
type Box2dType struct{}

// Name implements Codec.
func (Box2dType) Name() string { return "box2d" }

// BridgeKey implements Codec.
func (Box2dType) BridgeKey() string { return box2dBridgeKey }

// Schema implements Codec.
func (Box2dType) Schema() *arrow.StructType {
	return arrow.StructOf(
		arrow.Field{Name: "xmin", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "ymin", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "xmax", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "ymax", Type: arrow.PrimitiveTypes.Float64},
	)
}

// Encode produces the columnar record for a 2D box.
func (Box2dType) Encode(b geometry.Box2d) *record.Record {
	return record.New(4).
		Append("xmin", b.XMin).
		Append("ymin", b.YMin).
		Append("xmax", b.XMax).
		Append("ymax", b.YMax)
}

// Decode reconstructs a 2D box from its columnar record.
func (t Box2dType) Decode(rec *record.Record) (geometry.Box2d, error) {
	if err := checkArity(t.Name(), rec, 4); err != nil {
		return geometry.Box2d{}, err
	}
	var vals [4]float64
	for i, name := range [...]string{"xmin", "ymin", "xmax", "ymax"} {
		v, err := float64Field(t.Name(), rec, name)
		if err != nil {
			return geometry.Box2d{}, err
		}
		vals[i] = v
	}
	return geometry.Box2d{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, nil
}

// EncodeValue implements Codec.
func (t Box2dType) EncodeValue(v interface{}) (*record.Record, error) {
	b, ok := v.(geometry.Box2d)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "box2d codec: unsupported value type %T", v)
	}
	return t.Encode(b), nil
}

// DecodeValue implements Codec.
func (t Box2dType) DecodeValue(rec *record.Record) (interface{}, error) {
	return t.Decode(rec)
}

// Box3dType is the column codec for geometry.Box3d. The center is stored as
// a nested point record.
type Box3dType struct{}

// Name implements Codec.
func (Box3dType) Name() string { return "box3d" }

// BridgeKey implements Codec.
func (Box3dType) BridgeKey() string { return box3dBridgeKey }

// Schema implements Codec.
func (Box3dType) Schema() *arrow.StructType {
	return arrow.StructOf(
		arrow.Field{Name: "center", Type: PointType{}.Schema()},
		arrow.Field{Name: "length", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "width", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "height", Type: arrow.PrimitiveTypes.Float64},
		arrow.Field{Name: "heading", Type: arrow.PrimitiveTypes.Float64},
	)
}

// Encode produces the columnar record for a 3D box.
func (Box3dType) Encode(b geometry.Box3d) *record.Record {
	return record.New(5).
		Append("center", PointType{}.Encode(b.Center)).
		Append("length", b.Length).
		Append("width", b.Width).
		Append("height", b.Height).
		Append("heading", b.Heading)
}

// Decode reconstructs a 3D box from its columnar record.
func (t Box3dType) Decode(rec *record.Record) (geometry.Box3d, error) {
	if err := checkArity(t.Name(), rec, 5); err != nil {
		return geometry.Box3d{}, err
	}
	centerRec, err := recordField(t.Name(), rec, "center")
	if err != nil {
		return geometry.Box3d{}, err
	}
	center, err := PointType{}.Decode(centerRec)
	if err != nil {
		return geometry.Box3d{}, err
	}
	var vals [4]float64
	for i, name := range [...]string{"length", "width", "height", "heading"} {
		v, err := float64Field(t.Name(), rec, name)
		if err != nil {
			return geometry.Box3d{}, err
		}
		vals[i] = v
	}
	return geometry.Box3d{
		Center:  center,
		Length:  vals[0],
		Width:   vals[1],
		Height:  vals[2],
		Heading: vals[3],
	}, nil
}

// EncodeValue implements Codec.
func (t Box3dType) EncodeValue(v interface{}) (*record.Record, error) {
	b, ok := v.(geometry.Box3d)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "box3d codec: unsupported value type %T", v)
	}
	return t.Encode(b), nil
}

// DecodeValue implements Codec.
func (t Box3dType) DecodeValue(rec *record.Record) (interface{}, error) {
	return t.Decode(rec)
}

// MaskType is the column codec for geometry.Mask. The record stores the kind
// tag plus the image dimensions and exactly one of the two payload columns;
// the other is null.
type MaskType struct{}

// Name implements Codec.
func (MaskType) Name() string { return "mask" }

// BridgeKey implements Codec.
func (MaskType) BridgeKey() string { return maskBridgeKey }

// Schema implements Codec.
func (MaskType) Schema() *arrow.StructType {
	return arrow.StructOf(
		arrow.Field{Name: "type", Type: arrow.PrimitiveTypes.Int16},
		arrow.Field{Name: "height", Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{Name: "width", Type: arrow.PrimitiveTypes.Int32},
		arrow.Field{
			Name: "polygon",
			Type: arrow.ListOfField(arrow.Field{
				Name: "item",
				Type: arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Float32}),
			}),
			Nullable: true,
		},
		arrow.Field{
			Name:     "rle",
			Type:     arrow.ListOfField(arrow.Field{Name: "item", Type: arrow.PrimitiveTypes.Int32}),
			Nullable: true,
		},
	)
}

// Encode produces the columnar record for a mask. A mask whose kind tag is
// not one of the three known values is rejected; the check is defensive, the
// constructors in pkg/geometry never produce such a mask.
func (MaskType) Encode(m geometry.Mask) (*record.Record, error) {
	rec := record.New(5).
		Append("type", int16(m.Type)).
		Append("height", m.Height).
		Append("width", m.Width)

	switch m.Type {
	case geometry.MaskPolygon:
		rec.Append("polygon", m.Polygon).Append("rle", nil)
	case geometry.MaskRLE, geometry.MaskCOCORLE:
		rec.Append("polygon", nil).Append("rle", m.RLE)
	default:
		return nil, errors.Newf(errors.ErrorTypeData, "unrecognized mask type: %d", int16(m.Type))
	}
	return rec, nil
}

// Decode reconstructs a mask from its columnar record, dispatching on the
// stored kind tag.
func (t MaskType) Decode(rec *record.Record) (geometry.Mask, error) {
	if err := checkArity(t.Name(), rec, 5); err != nil {
		return geometry.Mask{}, err
	}
	tag, err := int16Field(t.Name(), rec, "type")
	if err != nil {
		return geometry.Mask{}, err
	}
	height, err := int32Field(t.Name(), rec, "height")
	if err != nil {
		return geometry.Mask{}, err
	}
	width, err := int32Field(t.Name(), rec, "width")
	if err != nil {
		return geometry.Mask{}, err
	}

	switch geometry.MaskKind(tag) {
	case geometry.MaskPolygon:
		polygon, err := polygonField(t.Name(), rec, "polygon")
		if err != nil {
			return geometry.Mask{}, err
		}
		if polygon == nil {
			return geometry.Mask{}, malformed(t.Name(), "polygon mask with null polygon payload")
		}
		return geometry.FromPolygon(polygon, width, height)
	case geometry.MaskRLE:
		runs, err := t.runs(rec)
		if err != nil {
			return geometry.Mask{}, err
		}
		return geometry.FromRLE(runs, width, height)
	case geometry.MaskCOCORLE:
		runs, err := t.runs(rec)
		if err != nil {
			return geometry.Mask{}, err
		}
		return geometry.FromCOCORLE(runs, width, height)
	default:
		return geometry.Mask{}, errors.Newf(errors.ErrorTypeData, "unrecognized mask type: %d", tag)
	}
}

func (t MaskType) runs(rec *record.Record) ([]int32, error) {
	runs, err := rleField(t.Name(), rec, "rle")
	if err != nil {
		return nil, err
	}
	if runs == nil {
		return nil, malformed(t.Name(), "run-length mask with null rle payload")
	}
	return runs, nil
}

// EncodeValue implements Codec.
func (t MaskType) EncodeValue(v interface{}) (*record.Record, error) {
	m, ok := v.(geometry.Mask)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "mask codec: unsupported value type %T", v)
	}
	return t.Encode(m)
}

// DecodeValue implements Codec.
func (t MaskType) DecodeValue(rec *record.Record) (interface{}, error) {
	return t.Decode(rec)
}
