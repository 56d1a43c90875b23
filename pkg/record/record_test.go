package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlake/geocol/pkg/record"
)

func TestRecordAppendAndAccess(t *testing.T) {
	rec := record.New(3).
		Append("x", 1.0).
		Append("y", 2.0).
		Append("z", nil)

	assert.Equal(t, 3, rec.Len())
	assert.Equal(t, []string{"x", "y", "z"}, rec.Names())
	assert.Equal(t, "x", rec.Name(0))
	assert.Equal(t, 1.0, rec.At(0))

	v, ok := rec.Get("y")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = rec.Get("z")
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = rec.Get("missing")
	assert.False(t, ok)
}

func TestRecordIsNull(t *testing.T) {
	rec := record.New(2).
		Append("a", nil).
		Append("b", int32(7))

	assert.True(t, rec.IsNull("a"))
	assert.False(t, rec.IsNull("b"))
	assert.False(t, rec.IsNull("missing"))
}

func TestRecordZeroValue(t *testing.T) {
	var rec record.Record
	rec.Append("k", "v")

	assert.Equal(t, 1, rec.Len())
	v, ok := rec.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRecordString(t *testing.T) {
	rec := record.New(2).
		Append("x", 1.5).
		Append("rle", nil)

	assert.Equal(t, "{x: 1.5, rle: null}", rec.String())
}
