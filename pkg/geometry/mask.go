package geometry

import (
	"github.com/visionlake/geocol/pkg/errors"
)

// MaskKind tags the encoding of a mask payload. The integer codes are a
// fixed external contract shared with other readers of the same storage;
// they must round-trip exactly.
type MaskKind int16

const (
	// MaskPolygon encodes the mask as one or more polygons, each a flat
	// sequence of (x, y) coordinate pairs.
	MaskPolygon MaskKind = 1
	// MaskRLE encodes the mask as row-major run lengths of alternating
	// background/foreground runs.
	MaskRLE MaskKind = 2
	// MaskCOCORLE encodes the mask as run lengths following the COCO
	// convention (column-major order).
	MaskCOCORLE MaskKind = 3
)

// String returns the lowercase name of the kind.
func (k MaskKind) String() string {
	switch k {
	case MaskPolygon:
		return "polygon"
	case MaskRLE:
		return "rle"
	case MaskCOCORLE:
		return "coco_rle"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the three known kinds.
func (k MaskKind) Valid() bool {
	return k == MaskPolygon || k == MaskRLE || k == MaskCOCORLE
}

// Mask is a 2D region over an image of Width x Height pixels, held in
// exactly one of three encodings selected by Type. Exactly one of Polygon
// and RLE is set.
type Mask struct {
	Type   MaskKind
	Width  int32
	Height int32

	// Polygon holds the payload for MaskPolygon: one flat []float32 of
	// (x, y) pairs per polygon.
	Polygon [][]float32

	// RLE holds the payload for MaskRLE and MaskCOCORLE.
	RLE []int32
}

// FromPolygon creates a polygon-encoded mask. Each polygon must contain an
// even number of coordinates and at least three vertices.
func FromPolygon(polygons [][]float32, width, height int32) (Mask, error) {
	if err := checkDims(width, height); err != nil {
		return Mask{}, err
	}
	if len(polygons) == 0 {
		return Mask{}, errors.New(errors.ErrorTypeValidation, "mask: empty polygon list")
	}
	for i, poly := range polygons {
		if len(poly)%2 != 0 {
			return Mask{}, errors.Newf(errors.ErrorTypeValidation,
				"mask: polygon %d has odd coordinate count %d", i, len(poly))
		}
		if len(poly) < 6 {
			return Mask{}, errors.Newf(errors.ErrorTypeValidation,
				"mask: polygon %d has fewer than 3 vertices", i)
		}
	}
	return Mask{Type: MaskPolygon, Width: width, Height: height, Polygon: polygons}, nil
}

// FromRLE creates a mask from row-major run lengths. Runs alternate
// background and foreground, starting with background, and must cover the
// full width*height pixel grid.
func FromRLE(runs []int32, width, height int32) (Mask, error) {
	if err := checkRuns(runs, width, height); err != nil {
		return Mask{}, err
	}
	return Mask{Type: MaskRLE, Width: width, Height: height, RLE: runs}, nil
}

// FromCOCORLE creates a mask from COCO-convention run lengths. The storage
// shape is identical to FromRLE; runs are counted in column-major order.
func FromCOCORLE(runs []int32, width, height int32) (Mask, error) {
	if err := checkRuns(runs, width, height); err != nil {
		return Mask{}, err
	}
	return Mask{Type: MaskCOCORLE, Width: width, Height: height, RLE: runs}, nil
}

func checkDims(width, height int32) error {
	if width <= 0 || height <= 0 {
		return errors.Newf(errors.ErrorTypeValidation,
			"mask: invalid dimensions %dx%d", width, height)
	}
	return nil
}

func checkRuns(runs []int32, width, height int32) error {
	if err := checkDims(width, height); err != nil {
		return err
	}
	if len(runs) == 0 {
		return errors.New(errors.ErrorTypeValidation, "mask: empty run list")
	}
	var total int64
	for i, r := range runs {
		if r < 0 {
			return errors.Newf(errors.ErrorTypeValidation, "mask: negative run length at %d", i)
		}
		total += int64(r)
	}
	if total != int64(width)*int64(height) {
		return errors.Newf(errors.ErrorTypeValidation,
			"mask: run lengths cover %d pixels, want %d", total, int64(width)*int64(height))
	}
	return nil
}

// ToDense expands an RLE or COCO RLE mask into a row-major bitmap of
// width*height bytes, one byte per pixel, 1 for foreground. Polygon masks
// are not rasterized here.
func (m Mask) ToDense() ([]uint8, error) {
	switch m.Type {
	case MaskRLE:
		return denseFromRuns(m.RLE, m.Width, m.Height, false), nil
	case MaskCOCORLE:
		return denseFromRuns(m.RLE, m.Width, m.Height, true), nil
	case MaskPolygon:
		return nil, errors.New(errors.ErrorTypeData, "mask: cannot expand polygon mask to dense bitmap")
	default:
		return nil, errors.Newf(errors.ErrorTypeData, "unrecognized mask type: %d", int16(m.Type))
	}
}

// denseFromRuns expands alternating background/foreground runs. Column-major
// runs (COCO) are transposed into the row-major output.
func denseFromRuns(runs []int32, width, height int32, columnMajor bool) []uint8 {
	out := make([]uint8, int(width)*int(height))
	pos := 0
	val := uint8(0)
	for _, r := range runs {
		for i := int32(0); i < r; i++ {
			if val == 1 {
				if columnMajor {
					col := pos / int(height)
					row := pos % int(height)
					out[row*int(width)+col] = 1
				} else {
					out[pos] = 1
				}
			}
			pos++
		}
		val = 1 - val
	}
	return out
}

// Area returns the number of foreground pixels for run-length masks, or the
// shoelace area of the polygons for polygon masks.
func (m Mask) Area() (float64, error) {
	switch m.Type {
	case MaskRLE, MaskCOCORLE:
		var area int64
		fg := false
		for _, r := range m.RLE {
			if fg {
				area += int64(r)
			}
			fg = !fg
		}
		return float64(area), nil
	case MaskPolygon:
		var area float64
		for _, poly := range m.Polygon {
			area += shoelace(poly)
		}
		return area, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeData, "unrecognized mask type: %d", int16(m.Type))
	}
}

// shoelace computes the absolute polygon area from flat (x, y) pairs.
func shoelace(poly []float32) float64 {
	n := len(poly) / 2
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		xi, yi := float64(poly[2*i]), float64(poly[2*i+1])
		xj, yj := float64(poly[2*j]), float64(poly[2*j+1])
		sum += xi*yj - xj*yi
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
