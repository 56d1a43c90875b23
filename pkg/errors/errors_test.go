package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionlake/geocol/pkg/errors"
)

func TestNewAndError(t *testing.T) {
	err := errors.New(errors.ErrorTypeValidation, "bad value")
	assert.Equal(t, "validation: bad value", err.Error())
	assert.NotEmpty(t, err.Stack)

	err = errors.Newf(errors.ErrorTypeData, "row %d is malformed", 7)
	assert.Equal(t, "data: row 7 is malformed", err.Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(cause, errors.ErrorTypeFile, "failed to write dataset")

	assert.Equal(t, "file: failed to write dataset: disk full", err.Error())
	assert.True(t, stderrors.Is(err, cause))

	assert.Nil(t, errors.Wrap(nil, errors.ErrorTypeFile, "ignored"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := errors.New(errors.ErrorTypeValidation, "inner")
	outer := errors.Wrap(inner, errors.ErrorTypeData, "outer")

	require.NotEmpty(t, outer.Stack)
	assert.Equal(t, inner.Stack, outer.Stack)
}

func TestIsType(t *testing.T) {
	err := errors.New(errors.ErrorTypeNotFound, "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	assert.False(t, errors.IsType(err, errors.ErrorTypeInternal))

	// Works through wrapping layers
	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, errors.IsType(wrapped, errors.ErrorTypeNotFound))

	assert.False(t, errors.IsType(stderrors.New("plain"), errors.ErrorTypeInternal))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrorTypeData, "decode failed").
		WithDetail("column", "bbox").
		WithDetail("row", 12)

	assert.Equal(t, "bbox", err.Details["column"])
	assert.Equal(t, 12, err.Details["row"])
}
