package math

// Plane is the set of points p with Normal.Dot(p) + D == 0.
type Plane struct {
	Normal Vec3
	D      float32
}

// PlaneFromPoints builds the plane through a, b and c. The normal follows
// the counter-clockwise winding a -> b -> c and is unit length unless the
// points are collinear, in which case it is zero.
func PlaneFromPoints(a, b, c Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}
