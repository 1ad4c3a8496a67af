// Package geometry provides basic geometric types used throughout the application.
package geometry

import "math"

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a RectInt from two corner points (x1,y1)-(x2,y2).
func NewRectInt(x1, y1, x2, y2 int) RectInt {
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Empty returns true if the rectangle has non-positive width or height.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the rectangle area, or 0 when empty.
func (r RectInt) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// MaxX returns the exclusive right edge.
func (r RectInt) MaxX() int { return r.X + r.Width }

// MaxY returns the exclusive bottom edge.
func (r RectInt) MaxY() int { return r.Y + r.Height }

// Offset returns the rectangle translated by (dx, dy).
func (r RectInt) Offset(dx, dy int) RectInt {
	return RectInt{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersect returns the intersection of two rectangles (possibly empty).
func (r RectInt) Intersect(other RectInt) RectInt {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.MaxX(), other.MaxX())
	y2 := min(r.MaxY(), other.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return RectInt{}
	}
	return NewRectInt(x1, y1, x2, y2)
}

// IoU returns the intersection-over-union ratio between two rectangles,
// in [0,1]. Empty rectangles yield 0.
func (r RectInt) IoU(other RectInt) float64 {
	inter := r.Intersect(other).Area()
	if inter == 0 {
		return 0
	}
	denom := r.Area() + other.Area() - inter
	if denom <= 0 {
		return 0
	}
	return float64(inter) / float64(denom)
}

// ClampTo clips the rectangle so it lies entirely within the given bounds.
func (r RectInt) ClampTo(width, height int) RectInt {
	x1 := max(0, r.X)
	y1 := max(0, r.Y)
	x2 := min(r.MaxX(), width)
	y2 := min(r.MaxY(), height)
	if x2 <= x1 || y2 <= y1 {
		return RectInt{}
	}
	return NewRectInt(x1, y1, x2, y2)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
