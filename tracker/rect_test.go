package tracker

import (
	"math"
	"testing"
)

// almostEqual checks if two float64 values are approximately equal
func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestRectAccessors(t *testing.T) {

	r := NewRect(10, 20, 110, 70)

	if r.X1() != 10 || r.Y1() != 20 || r.X2() != 110 || r.Y2() != 70 {
		t.Errorf("unexpected corner coordinates: %v", r.Xyxy)
	}

	if r.Width() != 100 {
		t.Errorf("expected width 100, got %f", r.Width())
	}

	if r.Height() != 50 {
		t.Errorf("expected height 50, got %f", r.Height())
	}

	if r.Area() != 5000 {
		t.Errorf("expected area 5000, got %f", r.Area())
	}
}

func TestRectContainedIn(t *testing.T) {

	outer := NewRect(0, 0, 100, 100)

	cases := []struct {
		name string
		box  Rect
		want bool
	}{
		{"fully inside", NewRect(10, 10, 20, 20), true},
		{"matches outer exactly", NewRect(0, 0, 100, 100), true},
		{"escapes right and bottom", NewRect(10, 10, 200, 200), false},
		{"escapes left", NewRect(-1, 10, 20, 20), false},
		{"escapes top", NewRect(10, -5, 20, 20), false},
		{"fully outside", NewRect(200, 200, 300, 300), false},
	}

	for _, tc := range cases {
		if got := tc.box.ContainedIn(outer); got != tc.want {
			t.Errorf("%s: ContainedIn returned %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRectLerp(t *testing.T) {

	const tolerance = 1e-9

	a := NewRect(0, 0, 10, 10)
	b := NewRect(100, 200, 110, 210)

	// midpoint must be the arithmetic mean of the two neighbours
	mid := a.Lerp(b, 0.5)
	want := []float64{50, 100, 60, 110}

	for i, v := range mid.Xyxy {
		if !almostEqual(v, want[i], tolerance) {
			t.Errorf("midpoint coordinate %d: got %f, want %f", i, v, want[i])
		}
	}

	// endpoints reproduce the neighbours exactly
	for i, v := range a.Lerp(b, 0).Xyxy {
		if !almostEqual(v, a.Xyxy[i], tolerance) {
			t.Errorf("t=0 coordinate %d: got %f, want %f", i, v, a.Xyxy[i])
		}
	}

	for i, v := range a.Lerp(b, 1).Xyxy {
		if !almostEqual(v, b.Xyxy[i], tolerance) {
			t.Errorf("t=1 coordinate %d: got %f, want %f", i, v, b.Xyxy[i])
		}
	}
}

func TestRectStringEncoding(t *testing.T) {

	cases := []struct {
		box  Rect
		want string
	}{
		{NewRect(100, 200, 300, 400), "[100 200 300 400]"},
		{NewRect(0, 0, 0, 0), "[0 0 0 0]"},
		{NewRect(10.5, 20.25, 30.5, 40.75), "[10.5 20.25 30.5 40.75]"},
	}

	for _, tc := range cases {
		if got := tc.box.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}

		parsed, err := ParseRect(tc.want)

		if err != nil {
			t.Fatalf("ParseRect(%q) returned error: %v", tc.want, err)
		}

		for i, v := range parsed.Xyxy {
			if v != tc.box.Xyxy[i] {
				t.Errorf("ParseRect(%q) coordinate %d: got %f, want %f",
					tc.want, i, v, tc.box.Xyxy[i])
			}
		}
	}
}

func TestParseRectRejectsGarbage(t *testing.T) {

	for _, s := range []string{"", "100 200 300 400", "[100 200 300]", "[a b c d]", "[1 2 3 4 5]"} {
		if _, err := ParseRect(s); err == nil {
			t.Errorf("ParseRect(%q) expected error, got none", s)
		}
	}
}
