package proctor

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Rectangle is an axis-aligned box in frame pixel coordinates.
// Wire format is the corner quadruple [x1, y1, x2, y2].
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect creates rectangle from top-left corner and its size
func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectFromCorners creates rectangle from (x1, y1, x2, y2) corners
func NewRectFromCorners(x1, y1, x2, y2 float64) Rectangle {
	return Rectangle{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// Corners returns (x1, y1, x2, y2)
func (rect Rectangle) Corners() (float64, float64, float64, float64) {
	return rect.X, rect.Y, rect.X + rect.Width, rect.Y + rect.Height
}

// Center returns center of the rectangle
func (rect Rectangle) Center() Point {
	return Point{
		X: rect.X + rect.Width/2.0,
		Y: rect.Y + rect.Height/2.0,
	}
}

// Area returns width*height. Could be zero for degenerate boxes.
func (rect Rectangle) Area() float64 {
	return rect.Width * rect.Height
}

func (rect Rectangle) isFinite() bool {
	return isFinite(rect.X) && isFinite(rect.Y) && isFinite(rect.Width) && isFinite(rect.Height)
}

func (rect Rectangle) MarshalJSON() ([]byte, error) {
	x1, y1, x2, y2 := rect.Corners()
	return json.Marshal([4]float64{x1, y1, x2, y2})
}

func (rect *Rectangle) UnmarshalJSON(data []byte) error {
	var corners [4]float64
	if err := json.Unmarshal(data, &corners); err != nil {
		return errors.Wrap(err, "box must be [x1, y1, x2, y2]")
	}
	*rect = NewRectFromCorners(corners[0], corners[1], corners[2], corners[3])
	return nil
}

// Point is a 2-D point. Also used for landmark coordinate sums.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func (point Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{point.X, point.Y})
}

func (point *Point) UnmarshalJSON(data []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return errors.Wrap(err, "point must be [x, y]")
	}
	point.X, point.Y = xy[0], xy[1]
	return nil
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// sizeRatio is |area(a) - area(b)| / max(area(a), area(b), 1)
func sizeRatio(a, b Rectangle) float64 {
	areaA := a.Area()
	areaB := b.Area()
	return math.Abs(areaA-areaB) / maxFloat64(maxFloat64(areaA, areaB), 1)
}
