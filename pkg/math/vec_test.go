package math

import (
	"testing"
)

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 12}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestVec3Perpendicular(t *testing.T) {
	for _, v := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}, {-0.2, 0.9, 0.1}} {
		p := v.Perpendicular()
		if d := p.Dot(v); d > 1e-5 || d < -1e-5 {
			t.Errorf("Perpendicular(%v) = %v, dot = %v", v, p, d)
		}
		if l := p.Length(); l < 0.999 || l > 1.001 {
			t.Errorf("Perpendicular(%v) length = %v", v, l)
		}
	}
}

func TestPlaneFromPoints(t *testing.T) {
	// Counter-clockwise seen from +Z
	pl := PlaneFromPoints(Vec3{0, 0, 1}, Vec3{1, 0, 1}, Vec3{0, 1, 1})
	if pl.Normal != (Vec3{0, 0, 1}) {
		t.Errorf("normal = %v, want (0, 0, 1)", pl.Normal)
	}
	if d := pl.Distance(Vec3{5, 5, 3}); d != 2 {
		t.Errorf("distance = %v, want 2", d)
	}
}
