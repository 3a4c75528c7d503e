package automation

import (
	"math"
	"testing"
)

func twoPointCurve(shape CurveType) Curve {
	return Curve{Points: []Point{
		{Time: 0, Value: 0, CurveType: Linear},
		{Time: 1, Value: 1, CurveType: shape},
	}}
}

func TestValueAtInterpolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shape CurveType
		at    float64
		want  float64
	}{
		{Linear, 0.5, 0.5},
		{Exponential, 0.5, 0.75},
		{Logarithmic, 0.5, 0.25},
		{Linear, 0.25, 0.25},
		{Exponential, 0, 0},
		{Logarithmic, 1, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.shape), func(t *testing.T) {
			t.Parallel()

			got, ok := twoPointCurve(tt.shape).ValueAt(tt.at)
			if !ok {
				t.Fatal("ValueAt reported no value")
			}

			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("ValueAt(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestValueAtHoldsEdges(t *testing.T) {
	t.Parallel()

	c := Curve{Points: []Point{
		{Time: 1, Value: 0.2, CurveType: Linear},
		{Time: 2, Value: 0.9, CurveType: Exponential},
	}}

	for _, at := range []float64{-5, 0, 0.999, 1} {
		if got, _ := c.ValueAt(at); got != 0.2 {
			t.Errorf("ValueAt(%v) = %v, want 0.2", at, got)
		}
	}

	for _, at := range []float64{2, 2.5, 100} {
		if got, _ := c.ValueAt(at); got != 0.9 {
			t.Errorf("ValueAt(%v) = %v, want 0.9", at, got)
		}
	}
}

func TestValueAtEmpty(t *testing.T) {
	t.Parallel()

	if _, ok := (Curve{}).ValueAt(1); ok {
		t.Fatal("empty curve reported a value")
	}
}

func TestUpdatePointKeepsOrder(t *testing.T) {
	t.Parallel()

	c := Curve{}
	for _, tm := range []float64{3, 1, 4, 1.5, 9, 2, 6} {
		c = c.UpdatePoint(Point{Time: tm, Value: tm / 10})
	}

	if c.PointCount() != 7 {
		t.Fatalf("PointCount = %d, want 7", c.PointCount())
	}

	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].Time <= c.Points[i-1].Time {
			t.Fatalf("points not strictly ascending at %d: %+v", i, c.Points)
		}
	}

	c = c.UpdatePoint(Point{Time: 4, Value: 0.05, CurveType: Exponential})
	if c.PointCount() != 7 {
		t.Fatalf("replace changed PointCount to %d", c.PointCount())
	}

	if got, _ := c.ValueAt(4); got != 0.05 {
		t.Fatalf("ValueAt(4) = %v after replace, want 0.05", got)
	}
}

func TestUpdatePointClampsAndIsPure(t *testing.T) {
	t.Parallel()

	orig := Curve{Points: []Point{{Time: 1, Value: 0.5, CurveType: Linear}}}
	next := orig.UpdatePoint(Point{Time: -2, Value: 7})

	if orig.PointCount() != 1 {
		t.Fatal("UpdatePoint mutated its receiver")
	}

	want := Point{Time: 0, Value: 1, CurveType: Linear}
	if next.Points[0] != want {
		t.Fatalf("first point = %+v, want %+v", next.Points[0], want)
	}
}

func TestRemovePoint(t *testing.T) {
	t.Parallel()

	c := twoPointCurve(Linear).RemovePoint(1)
	if c.PointCount() != 1 || c.Points[0].Time != 0 {
		t.Fatalf("RemovePoint left %+v", c.Points)
	}

	if got := c.RemovePoint(42).PointCount(); got != 1 {
		t.Fatalf("removing a missing time changed the count to %d", got)
	}
}

func TestShiftPoints(t *testing.T) {
	t.Parallel()

	c := Curve{Points: []Point{
		{Time: 0.5, Value: 0.1, CurveType: Linear},
		{Time: 1, Value: 0.2, CurveType: Linear},
		{Time: 3, Value: 0.3, CurveType: Linear},
	}}

	right := c.ShiftPoints(2)
	if right.Points[0].Time != 2.5 || right.Points[2].Time != 5 {
		t.Fatalf("shift right = %+v", right.Points)
	}

	left := c.ShiftPoints(-2)
	if left.PointCount() != 2 {
		t.Fatalf("shift left PointCount = %d, want 2 (collision at 0)", left.PointCount())
	}

	if left.Points[0] != (Point{Time: 0, Value: 0.2, CurveType: Linear}) {
		t.Fatalf("collided point = %+v, want the originally later point", left.Points[0])
	}

	if left.Points[1].Time != 1 {
		t.Fatalf("second point time = %v, want 1", left.Points[1].Time)
	}
}

func TestScaleValues(t *testing.T) {
	t.Parallel()

	c := Curve{Points: []Point{
		{Time: 0, Value: 0.2, CurveType: Linear},
		{Time: 1, Value: 0.6, CurveType: Linear},
		{Time: 2, Value: 0.4, CurveType: Linear},
	}}

	s := c.ScaleValues(0, 1)

	want := []float64{0, 1, 0.5}
	for i, p := range s.Points {
		if math.Abs(p.Value-want[i]) > 1e-12 {
			t.Fatalf("point %d = %v, want %v", i, p.Value, want[i])
		}
	}

	flat := Curve{Points: []Point{
		{Time: 0, Value: 0.7, CurveType: Linear},
		{Time: 1, Value: 0.7, CurveType: Linear},
	}}.ScaleValues(0.2, 0.4)

	for _, p := range flat.Points {
		if math.Abs(p.Value-0.3) > 1e-12 {
			t.Fatalf("flat curve value = %v, want midpoint 0.3", p.Value)
		}
	}
}

func TestDuplicate(t *testing.T) {
	t.Parallel()

	c := twoPointCurve(Linear)
	c.ID = "a"
	c.Recording = true

	d := c.Duplicate("b")
	if d.ID != "b" || d.Recording {
		t.Fatalf("Duplicate = %+v", d)
	}

	d.Points[0].Value = 0.9
	if c.Points[0].Value != 0 {
		t.Fatal("Duplicate shares point storage with the original")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	if m, err := ParseMode("latch"); err != nil || m != ModeLatch {
		t.Fatalf("ParseMode(latch) = %q, %v", m, err)
	}

	if _, err := ParseMode("record"); err == nil {
		t.Fatal("ParseMode accepted an unknown mode")
	}
}
