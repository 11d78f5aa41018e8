package tracker

import (
	"fmt"
	"strconv"
	"strings"
)

// Xyxy (x1, y1, x2, y2) represents the corner coordinates of a box as a
// 1x4 matrix
type Xyxy []float64

// Rect represents an axis-aligned bounding box in Xyxy (x1, y1, x2, y2)
// corner format, with x1 < x2 and y1 < y2 by construction of the upstream
// detector
type Rect struct {
	Xyxy Xyxy
}

// NewRect creates a new Rect with given corner coordinates
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		Xyxy: Xyxy{x1, y1, x2, y2},
	}
}

// X1 returns the top-left x coordinate of the rectangle
func (r *Rect) X1() float64 {
	return r.Xyxy[0]
}

// Y1 returns the top-left y coordinate of the rectangle
func (r *Rect) Y1() float64 {
	return r.Xyxy[1]
}

// X2 returns the bottom-right x coordinate of the rectangle
func (r *Rect) X2() float64 {
	return r.Xyxy[2]
}

// Y2 returns the bottom-right y coordinate of the rectangle
func (r *Rect) Y2() float64 {
	return r.Xyxy[3]
}

// Width returns the width of the rectangle
func (r *Rect) Width() float64 {
	return r.Xyxy[2] - r.Xyxy[0]
}

// Height returns the height of the rectangle
func (r *Rect) Height() float64 {
	return r.Xyxy[3] - r.Xyxy[1]
}

// Area returns the area of the rectangle
func (r *Rect) Area() float64 {
	return r.Width() * r.Height()
}

// ContainedIn reports whether the rectangle lies entirely inside the outer
// rectangle, boundary coordinates included
func (r *Rect) ContainedIn(outer Rect) bool {
	return r.Xyxy[0] >= outer.Xyxy[0] &&
		r.Xyxy[1] >= outer.Xyxy[1] &&
		r.Xyxy[2] <= outer.Xyxy[2] &&
		r.Xyxy[3] <= outer.Xyxy[3]
}

// Lerp linearly interpolates each coordinate between the rectangle and
// next, where t=0 returns the rectangle and t=1 returns next
func (r *Rect) Lerp(next Rect, t float64) Rect {
	out := make(Xyxy, 4)

	for i := 0; i < 4; i++ {
		out[i] = r.Xyxy[i] + t*(next.Xyxy[i]-r.Xyxy[i])
	}

	return Rect{Xyxy: out}
}

// IsZero reports whether all coordinates of the rectangle are zero, the
// encoding used for an absent box in serialized records
func (r *Rect) IsZero() bool {
	return r.Xyxy[0] == 0 && r.Xyxy[1] == 0 && r.Xyxy[2] == 0 && r.Xyxy[3] == 0
}

// String renders the rectangle in the bracket-and-space encoding used by
// downstream record consumers, e.g. "[100 200 300 400]".  Coordinates keep
// full float precision, integral values print without a decimal part.
func (r *Rect) String() string {
	parts := make([]string, 4)

	for i, v := range r.Xyxy {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}

	return "[" + strings.Join(parts, " ") + "]"
}

// ParseRect parses the bracket-and-space encoding produced by String back
// into a Rect
func ParseRect(s string) (Rect, error) {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Rect{}, fmt.Errorf("invalid box encoding %q: missing brackets", s)
	}

	fields := strings.Fields(s[1 : len(s)-1])

	if len(fields) != 4 {
		return Rect{}, fmt.Errorf("invalid box encoding %q: expected 4 coordinates, got %d", s, len(fields))
	}

	out := make(Xyxy, 4)

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)

		if err != nil {
			return Rect{}, fmt.Errorf("invalid box coordinate %q: %w", f, err)
		}

		out[i] = v
	}

	return Rect{Xyxy: out}, nil
}
