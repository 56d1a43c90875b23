package dataset

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/metrics"
	"github.com/visionlake/geocol/pkg/record"
	"github.com/visionlake/geocol/pkg/udt"
)

// Reader reads rows back from an Arrow IPC file, reconstructing geometry
// values for columns whose field metadata names a registered codec.
type Reader struct {
	fileReader   *ipc.FileReader
	schema       *arrow.Schema
	codecs       []udt.Codec
	currentBatch arrow.Record
	currentRow   int
	batchIndex   int
	numRows      int64
	started      time.Time
	closer       io.Closer
	mu           sync.Mutex
}

// NewReader creates a reader on top of r.
func NewReader(r ipc.ReadAtSeeker) (*Reader, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create IPC reader")
	}

	codecs, err := codecsForSchema(fr.Schema())
	if err != nil {
		_ = fr.Close()
		return nil, err
	}

	return &Reader{
		fileReader: fr,
		schema:     fr.Schema(),
		codecs:     codecs,
		batchIndex: -1,
		numRows:    -1,
		started:    time.Now(),
	}, nil
}

// Open creates a reader for a dataset file on disk. The reader owns the
// file handle and closes it in Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open dataset file")
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Schema returns the stored Arrow schema.
func (r *Reader) Schema() *arrow.Schema { return r.schema }

// NumRows returns the total number of rows in the file. The count is
// computed once and cached.
func (r *Reader) NumRows() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.numRows >= 0 {
		return r.numRows
	}
	var n int64
	for i := 0; i < r.fileReader.NumRecords(); i++ {
		rec, err := r.fileReader.RecordAt(i)
		if err != nil {
			continue
		}
		n += rec.NumRows()
		rec.Release()
	}
	r.numRows = n
	return n
}

// Next returns the next row, or (nil, nil) at end of file.
func (r *Reader) Next() (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentBatch == nil || r.currentRow >= int(r.currentBatch.NumRows()) {
		if err := r.loadNextBatch(); err != nil {
			return nil, err
		}
		if r.currentBatch == nil {
			return nil, nil // EOF
		}
	}

	row, err := r.rowAt(r.currentRow)
	if err != nil {
		return nil, err
	}
	r.currentRow++
	return row, nil
}

// ReadAll drains the reader into a slice of rows.
func (r *Reader) ReadAll() ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	for {
		row, err := r.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// Close releases the current batch and underlying resources.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentBatch != nil {
		r.currentBatch.Release()
		r.currentBatch = nil
	}
	err := r.fileReader.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	metrics.DatasetReadDuration.Observe(time.Since(r.started).Seconds())
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close dataset reader")
	}
	return nil
}

func (r *Reader) loadNextBatch() error {
	if r.currentBatch != nil {
		r.currentBatch.Release()
		r.currentBatch = nil
	}

	r.batchIndex++
	if r.batchIndex >= r.fileReader.NumRecords() {
		return nil // EOF
	}

	rec, err := r.fileReader.RecordAt(r.batchIndex)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read record batch")
	}
	r.currentBatch = rec
	r.currentRow = 0
	return nil
}

// rowAt materializes one row, decoding geometry columns through their codec.
func (r *Reader) rowAt(rowIdx int) (map[string]interface{}, error) {
	row := make(map[string]interface{}, int(r.currentBatch.NumCols()))

	for i := 0; i < int(r.currentBatch.NumCols()); i++ {
		col := r.currentBatch.Column(i)
		field := r.schema.Field(i)

		if col.IsNull(rowIdx) {
			row[field.Name] = nil
			continue
		}

		if codec := r.codecs[i]; codec != nil {
			structCol, ok := col.(*array.Struct)
			if !ok {
				return nil, errors.Newf(errors.ErrorTypeData,
					"column %q: geometry column stored as %T, want struct", field.Name, col)
			}
			rec, err := structValue(structCol, rowIdx)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeData, "column "+field.Name)
			}
			value, err := codec.DecodeValue(rec)
			if err != nil {
				metrics.DecodeErrors.WithLabelValues(codec.Name()).Inc()
				return nil, errors.Wrap(err, errors.ErrorTypeData, "column "+field.Name)
			}
			metrics.RowsDecoded.WithLabelValues(codec.Name()).Inc()
			row[field.Name] = value
			continue
		}

		value, err := columnValue(col, rowIdx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "column "+field.Name)
		}
		row[field.Name] = value
	}

	return row, nil
}

// structValue converts one row of a struct column into a record container.
func structValue(arr *array.Struct, rowIdx int) (*record.Record, error) {
	st, ok := arr.DataType().(*arrow.StructType)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeInternal, "struct array with data type %T", arr.DataType())
	}
	rec := record.New(arr.NumField())
	for i := 0; i < arr.NumField(); i++ {
		name := st.Field(i).Name
		fieldArr := arr.Field(i)
		if fieldArr.IsNull(rowIdx) {
			rec.Append(name, nil)
			continue
		}
		value, err := columnValue(fieldArr, rowIdx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "field "+name)
		}
		rec.Append(name, value)
	}
	return rec, nil
}

// columnValue extracts one value from an Arrow array, dispatching on the
// concrete array type.
func columnValue(col arrow.Array, rowIdx int) (interface{}, error) {
	switch c := col.(type) {
	case *array.Float64:
		return c.Value(rowIdx), nil
	case *array.Float32:
		return c.Value(rowIdx), nil
	case *array.Int16:
		return c.Value(rowIdx), nil
	case *array.Int32:
		return c.Value(rowIdx), nil
	case *array.Int64:
		return c.Value(rowIdx), nil
	case *array.String:
		return c.Value(rowIdx), nil
	case *array.Boolean:
		return c.Value(rowIdx), nil
	case *array.Struct:
		return structValue(c, rowIdx)
	case *array.List:
		return listValue(c, rowIdx)
	default:
		return nil, errors.Newf(errors.ErrorTypeData, "unsupported column type %T", col)
	}
}

// listValue extracts one list row as a typed slice. Nested lists of float32
// come back as [][]float32 for mask polygons.
func listValue(col *array.List, rowIdx int) (interface{}, error) {
	start, end := col.ValueOffsets(rowIdx)
	values := col.ListValues()

	switch v := values.(type) {
	case *array.Int32:
		out := make([]int32, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, v.Value(int(i)))
		}
		return out, nil

	case *array.Float32:
		out := make([]float32, 0, end-start)
		for i := start; i < end; i++ {
			out = append(out, v.Value(int(i)))
		}
		return out, nil

	case *array.List:
		out := make([][]float32, 0, end-start)
		for i := start; i < end; i++ {
			elem, err := listValue(v, int(i))
			if err != nil {
				return nil, err
			}
			flat, ok := elem.([]float32)
			if !ok {
				return nil, errors.Newf(errors.ErrorTypeData, "nested list element is %T, want []float32", elem)
			}
			out = append(out, flat)
		}
		return out, nil

	default:
		return nil, errors.Newf(errors.ErrorTypeData, "unsupported list element type %T", values)
	}
}
