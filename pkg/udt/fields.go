package udt

import (
	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/record"
)

// malformed builds the validation error used by every decode path when a
// record does not match its layout.
func malformed(kind, detail string) *errors.Error {
	return errors.Newf(errors.ErrorTypeValidation, "malformed %s record: %s", kind, detail)
}

// checkArity rejects records whose field count differs from the layout.
func checkArity(kind string, rec *record.Record, want int) error {
	if rec == nil {
		return malformed(kind, "nil record")
	}
	if rec.Len() != want {
		return errors.Newf(errors.ErrorTypeValidation,
			"malformed %s record: got %d fields, want %d", kind, rec.Len(), want)
	}
	return nil
}

func float64Field(kind string, rec *record.Record, name string) (float64, error) {
	v, ok := rec.Get(name)
	if !ok {
		return 0, malformed(kind, "missing field "+name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, malformed(kind, "field "+name+" is not a float64")
	}
	return f, nil
}

func int16Field(kind string, rec *record.Record, name string) (int16, error) {
	v, ok := rec.Get(name)
	if !ok {
		return 0, malformed(kind, "missing field "+name)
	}
	i, ok := v.(int16)
	if !ok {
		return 0, malformed(kind, "field "+name+" is not an int16")
	}
	return i, nil
}

func int32Field(kind string, rec *record.Record, name string) (int32, error) {
	v, ok := rec.Get(name)
	if !ok {
		return 0, malformed(kind, "missing field "+name)
	}
	i, ok := v.(int32)
	if !ok {
		return 0, malformed(kind, "field "+name+" is not an int32")
	}
	return i, nil
}

func recordField(kind string, rec *record.Record, name string) (*record.Record, error) {
	v, ok := rec.Get(name)
	if !ok {
		return nil, malformed(kind, "missing field "+name)
	}
	nested, ok := v.(*record.Record)
	if !ok {
		return nil, malformed(kind, "field "+name+" is not a nested record")
	}
	return nested, nil
}

// polygonField extracts a nullable nested float32 array field.
func polygonField(kind string, rec *record.Record, name string) ([][]float32, error) {
	v, ok := rec.Get(name)
	if !ok {
		return nil, malformed(kind, "missing field "+name)
	}
	if v == nil {
		return nil, nil
	}
	p, ok := v.([][]float32)
	if !ok {
		return nil, malformed(kind, "field "+name+" is not a nested float32 array")
	}
	return p, nil
}

// rleField extracts a nullable int32 array field.
func rleField(kind string, rec *record.Record, name string) ([]int32, error) {
	v, ok := rec.Get(name)
	if !ok {
		return nil, malformed(kind, "missing field "+name)
	}
	if v == nil {
		return nil, nil
	}
	r, ok := v.([]int32)
	if !ok {
		return nil, malformed(kind, "field "+name+" is not an int32 array")
	}
	return r, nil
}
