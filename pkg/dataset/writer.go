package dataset

import (
	"io"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/visionlake/geocol/pkg/errors"
	"github.com/visionlake/geocol/pkg/metrics"
	"github.com/visionlake/geocol/pkg/record"
)

const defaultBatchSize = 1024

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

type writerOptions struct {
	batchSize int
	mem       memory.Allocator
	zstd      bool
}

// WithBatchSize sets the number of rows buffered per record batch.
func WithBatchSize(n int) WriterOption {
	return func(o *writerOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithAllocator sets the Arrow allocator.
func WithAllocator(mem memory.Allocator) WriterOption {
	return func(o *writerOptions) { o.mem = mem }
}

// WithZstdCompression enables zstd compression of record batch buffers.
func WithZstdCompression() WriterOption {
	return func(o *writerOptions) { o.zstd = true }
}

// Writer writes rows with geometry columns to an Arrow IPC file.
type Writer struct {
	cols          []ColumnSpec
	schema        *arrow.Schema
	fileWriter    *ipc.FileWriter
	recordBuilder *array.RecordBuilder
	batchSize     int
	currentBatch  int
	rowsWritten   int64
	writeErr      error
	started       time.Time
	mu            sync.Mutex
}

// NewWriter creates a writer for the given columns on top of w. The caller
// must Close the writer to finalize the file footer.
func NewWriter(w io.Writer, cols []ColumnSpec, opts ...WriterOption) (*Writer, error) {
	o := writerOptions{batchSize: defaultBatchSize, mem: memory.NewGoAllocator()}
	for _, opt := range opts {
		opt(&o)
	}

	schema, err := buildSchema(cols)
	if err != nil {
		return nil, err
	}

	ipcOpts := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(o.mem)}
	if o.zstd {
		ipcOpts = append(ipcOpts, ipc.WithZstd())
	}
	fw, err := ipc.NewFileWriter(w, ipcOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create IPC writer")
	}

	specs := make([]ColumnSpec, len(cols))
	copy(specs, cols)

	return &Writer{
		cols:          specs,
		schema:        schema,
		fileWriter:    fw,
		recordBuilder: array.NewRecordBuilder(o.mem, schema),
		batchSize:     o.batchSize,
		started:       time.Now(),
	}, nil
}

// Schema returns the Arrow schema written to the file.
func (w *Writer) Schema() *arrow.Schema { return w.schema }

// RowsWritten returns the number of rows flushed so far.
func (w *Writer) RowsWritten() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rowsWritten
}

// Write appends one row. Geometry column values are encoded through their
// codec; a missing or nil value writes a null for nullable columns and fails
// otherwise.
//
// A failed Write leaves the row partially buffered, so the writer is
// unusable afterwards: every later Write, Flush, or Close returns the same
// error instead of producing column-misaligned batches.
func (w *Writer) Write(row map[string]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writeErr != nil {
		return w.writeErr
	}
	if err := w.writeRow(row); err != nil {
		w.writeErr = err
		return err
	}

	w.currentBatch++
	if w.currentBatch >= w.batchSize {
		return w.flushBatch()
	}
	return nil
}

func (w *Writer) writeRow(row map[string]interface{}) error {
	for i, col := range w.cols {
		builder := w.recordBuilder.Field(i)
		value, ok := row[col.Name]
		if !ok || value == nil {
			if !col.Nullable {
				return errors.Newf(errors.ErrorTypeValidation,
					"column %q is not nullable and has no value", col.Name)
			}
			builder.AppendNull()
			continue
		}

		if col.Codec != nil {
			rec, err := col.Codec.EncodeValue(value)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeData, "failed to encode column "+col.Name)
			}
			sb, ok := builder.(*array.StructBuilder)
			if !ok {
				return errors.Newf(errors.ErrorTypeInternal,
					"column %q: geometry column has non-struct builder %T", col.Name, builder)
			}
			if err := appendRecord(sb, rec); err != nil {
				return errors.Wrap(err, errors.ErrorTypeData, "failed to append column "+col.Name)
			}
			metrics.RowsEncoded.WithLabelValues(col.Codec.Name()).Inc()
			continue
		}

		if err := appendValue(builder, value); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to append column "+col.Name)
		}
	}
	return nil
}

// Flush writes any buffered rows as a record batch.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writeErr != nil {
		return w.writeErr
	}
	return w.flushBatch()
}

// Close finalizes the file, flushing remaining rows first unless an earlier
// Write failed.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writeErr == nil {
		if err := w.flushBatch(); err != nil {
			return err
		}
	}
	closeErr := w.fileWriter.Close()
	w.recordBuilder.Release()
	metrics.DatasetWriteDuration.Observe(time.Since(w.started).Seconds())
	if w.writeErr != nil {
		return w.writeErr
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, errors.ErrorTypeFile, "failed to close IPC writer")
	}
	return nil
}

func (w *Writer) flushBatch() error {
	if w.currentBatch == 0 {
		return nil
	}
	rec := w.recordBuilder.NewRecord()
	defer rec.Release()

	if err := w.fileWriter.Write(rec); err != nil {
		w.writeErr = errors.Wrap(err, errors.ErrorTypeFile, "failed to write record batch")
		return w.writeErr
	}
	w.rowsWritten += int64(w.currentBatch)
	w.currentBatch = 0
	return nil
}

// appendRecord expands a columnar record into a struct builder, field by
// field in layout order.
func appendRecord(sb *array.StructBuilder, rec *record.Record) error {
	if sb.NumField() != rec.Len() {
		return errors.Newf(errors.ErrorTypeData,
			"record has %d fields, struct layout has %d", rec.Len(), sb.NumField())
	}
	sb.Append(true)
	for i := 0; i < rec.Len(); i++ {
		if err := appendValue(sb.FieldBuilder(i), rec.At(i)); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "field "+rec.Name(i))
		}
	}
	return nil
}

// appendValue appends one value to a builder, dispatching on builder type.
func appendValue(builder array.Builder, value interface{}) error {
	if value == nil {
		builder.AppendNull()
		return nil
	}

	switch b := builder.(type) {
	case *array.Float64Builder:
		v, ok := value.(float64)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "expected float64, got %T", value)
		}
		b.Append(v)

	case *array.Float32Builder:
		v, ok := value.(float32)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "expected float32, got %T", value)
		}
		b.Append(v)

	case *array.Int16Builder:
		v, ok := value.(int16)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "expected int16, got %T", value)
		}
		b.Append(v)

	case *array.Int32Builder:
		switch v := value.(type) {
		case int32:
			b.Append(v)
		case int:
			b.Append(int32(v))
		default:
			return errors.Newf(errors.ErrorTypeData, "expected int32, got %T", value)
		}

	case *array.Int64Builder:
		switch v := value.(type) {
		case int64:
			b.Append(v)
		case int32:
			b.Append(int64(v))
		case int:
			b.Append(int64(v))
		default:
			return errors.Newf(errors.ErrorTypeData, "expected int64, got %T", value)
		}

	case *array.StringBuilder:
		v, ok := value.(string)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "expected string, got %T", value)
		}
		b.Append(v)

	case *array.BooleanBuilder:
		v, ok := value.(bool)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "expected bool, got %T", value)
		}
		b.Append(v)

	case *array.StructBuilder:
		rec, ok := value.(*record.Record)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "expected nested record, got %T", value)
		}
		return appendRecord(b, rec)

	case *array.ListBuilder:
		return appendList(b, value)

	default:
		return errors.Newf(errors.ErrorTypeData, "unsupported builder type %T", builder)
	}
	return nil
}

// appendList appends slice payloads to a list builder. Nested float32 lists
// carry mask polygons; flat int32 lists carry run lengths.
func appendList(lb *array.ListBuilder, value interface{}) error {
	switch v := value.(type) {
	case []int32:
		lb.Append(true)
		vb, ok := lb.ValueBuilder().(*array.Int32Builder)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "list element builder is %T, want int32", lb.ValueBuilder())
		}
		vb.AppendValues(v, nil)

	case []float32:
		lb.Append(true)
		vb, ok := lb.ValueBuilder().(*array.Float32Builder)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "list element builder is %T, want float32", lb.ValueBuilder())
		}
		vb.AppendValues(v, nil)

	case [][]float32:
		lb.Append(true)
		inner, ok := lb.ValueBuilder().(*array.ListBuilder)
		if !ok {
			return errors.Newf(errors.ErrorTypeData, "list element builder is %T, want list", lb.ValueBuilder())
		}
		for _, elem := range v {
			if err := appendList(inner, elem); err != nil {
				return err
			}
		}

	default:
		return errors.Newf(errors.ErrorTypeData, "unsupported list payload %T", value)
	}
	return nil
}
