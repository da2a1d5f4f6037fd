package marionette

import "math"

// identityAffine is the identity affine matrix.
var identityAffine = [6]float64{1, 0, 0, 1, 0, 0}

// Transform holds a bone's local pose: a translation, a rotation (radians)
// and scale applied about the pivot point, and the pivot itself. The pivot
// is the bone's joint position in parent space; translation offsets it.
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	PivotX, PivotY float64
}

// bindTransform is the default local pose for a new bone.
func bindTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Affine computes the local affine matrix. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-Pivot) -> Scale -> Rotate -> Translate(Pivot) -> Translate(X, Y)
//
// so rotation and scale pivot about (PivotX, PivotY), and the pivot itself
// maps to (PivotX+X, PivotY+Y).
func (t Transform) Affine() [6]float64 {
	sin, cos := math.Sincos(t.Rotation)

	a := cos * t.ScaleX
	b := sin * t.ScaleX
	c := -sin * t.ScaleY
	d := cos * t.ScaleY

	// Offset keeps the pivot fixed: (X+px, Y+py) - M*(px, py).
	tx := t.X + t.PivotX - (a*t.PivotX + c*t.PivotY)
	ty := t.Y + t.PivotY - (b*t.PivotX + d*t.PivotY)

	return [6]float64{a, b, c, d, tx, ty}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
