package geometry

import "testing"

func TestRectIntIntersect(t *testing.T) {
	a := NewRectInt(0, 0, 40, 40)
	b := NewRectInt(20, 20, 60, 60)
	got := a.Intersect(b)
	want := NewRectInt(20, 20, 40, 40)
	if got != want {
		t.Errorf("Intersect = %+v, want %+v", got, want)
	}

	c := NewRectInt(100, 100, 120, 120)
	if !a.Intersect(c).Empty() {
		t.Error("disjoint rects intersect")
	}
}

func TestRectIntIoU(t *testing.T) {
	a := NewRectInt(0, 0, 40, 40)
	if got := a.IoU(a); got != 1 {
		t.Errorf("self IoU = %v, want 1", got)
	}

	// 20x40 overlap of two 40x40 boxes: 800 / (1600+1600-800) = 1/3
	b := NewRectInt(20, 0, 60, 40)
	got := a.IoU(b)
	want := 1.0 / 3.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("IoU = %v, want %v", got, want)
	}

	if got := a.IoU(NewRectInt(100, 100, 120, 120)); got != 0 {
		t.Errorf("disjoint IoU = %v, want 0", got)
	}
	if got := a.IoU(RectInt{}); got != 0 {
		t.Errorf("empty IoU = %v, want 0", got)
	}
}

func TestRectIntClampTo(t *testing.T) {
	r := NewRectInt(-10, -10, 50, 50).ClampTo(40, 40)
	if r != NewRectInt(0, 0, 40, 40) {
		t.Errorf("clamped = %+v", r)
	}
	if !NewRectInt(50, 50, 60, 60).ClampTo(40, 40).Empty() {
		t.Error("rect outside bounds should clamp to empty")
	}
}

func TestRectIntOffset(t *testing.T) {
	r := NewRectInt(10, 20, 30, 50).Offset(5, -5)
	if r.X != 15 || r.Y != 15 || r.Width != 20 || r.Height != 30 {
		t.Errorf("offset = %+v", r)
	}
}

func TestPointDistance(t *testing.T) {
	d := Point2D{X: 0, Y: 0}.Distance(Point2D{X: 3, Y: 4})
	if d != 5 {
		t.Errorf("distance = %v, want 5", d)
	}
}
