package geometry

import (
	"math"

	"github.com/visionlake/geocol/pkg/errors"
)

// Box2d is an axis-aligned rectangle. Consumers rely on XMin <= XMax and
// YMin <= YMax; NewBox2d enforces it.
type Box2d struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// NewBox2d creates an axis-aligned rectangle from its corner coordinates.
func NewBox2d(xmin, ymin, xmax, ymax float64) (Box2d, error) {
	if xmin > xmax {
		return Box2d{}, errors.Newf(errors.ErrorTypeValidation,
			"box2d: xmin %v greater than xmax %v", xmin, xmax)
	}
	if ymin > ymax {
		return Box2d{}, errors.Newf(errors.ErrorTypeValidation,
			"box2d: ymin %v greater than ymax %v", ymin, ymax)
	}
	return Box2d{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}, nil
}

// Width returns the horizontal extent of the box.
func (b Box2d) Width() float64 { return b.XMax - b.XMin }

// Height returns the vertical extent of the box.
func (b Box2d) Height() float64 { return b.YMax - b.YMin }

// Area returns the area of the box.
func (b Box2d) Area() float64 { return b.Width() * b.Height() }

// Center returns the center of the box as a Point with z = 0.
func (b Box2d) Center() Point {
	return Point{X: (b.XMin + b.XMax) / 2, Y: (b.YMin + b.YMax) / 2}
}

// Contains reports whether p lies inside the box, z ignored.
func (b Box2d) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Intersection returns the area of overlap between b and o.
func (b Box2d) Intersection(o Box2d) float64 {
	w := math.Min(b.XMax, o.XMax) - math.Max(b.XMin, o.XMin)
	h := math.Min(b.YMax, o.YMax) - math.Max(b.YMin, o.YMin)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the intersection-over-union of b and o.
func (b Box2d) IoU(o Box2d) float64 {
	inter := b.Intersection(o)
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Box3d is an oriented cuboid: a center point, extents along each axis, and
// a heading (yaw) around the vertical axis. The angular unit of Heading is
// owned by the data producer; the type stores it verbatim.
type Box3d struct {
	Center  Point
	Length  float64
	Width   float64
	Height  float64
	Heading float64
}

// NewBox3d creates an oriented cuboid.
func NewBox3d(center Point, length, width, height, heading float64) (Box3d, error) {
	if length < 0 || width < 0 || height < 0 {
		return Box3d{}, errors.Newf(errors.ErrorTypeValidation,
			"box3d: negative extent (length=%v width=%v height=%v)", length, width, height)
	}
	return Box3d{
		Center:  center,
		Length:  length,
		Width:   width,
		Height:  height,
		Heading: heading,
	}, nil
}

// Volume returns the volume of the cuboid.
func (b Box3d) Volume() float64 { return b.Length * b.Width * b.Height }
