// Package geocol teaches Arrow-based columnar pipelines how to store and
// retrieve geometric values: points, 2D/3D bounding boxes, and segmentation
// masks.
//
// The core of the module is pkg/udt, which defines a column codec per value
// kind. A codec declares the fixed columnar record layout for its kind
// (an Arrow struct type), encodes in-memory geometry values into that layout,
// and decodes stored records back into values. The layouts are a wire
// contract: any reader of the same storage must match them field for field.
//
// Supporting packages:
//
//   - pkg/geometry: the value types themselves and their coordinate math
//   - pkg/record: the ordered, named record container codecs read and write
//   - pkg/dataset: Arrow IPC persistence for rows with geometry columns
//   - pkg/session: a local analytics session with warehouse and run tracking
//   - pkg/tracking: a bbolt-backed experiment tracking store
//   - pkg/objectstore: S3 and GCS helpers for temporary test storage
//
// Every codec operation is a pure, synchronous transformation. Codecs hold
// no state and may be called concurrently from any number of goroutines.
package geocol
