package mathutil

import "math"

// Mat4 is a 4×4 homogeneous transform stored row-major, acting on column
// vectors: p' = M × p.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b, i.e. b is applied first.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// Translation returns a pure translation.
func Translation(t Vec3) Mat4 {
	m := Mat4Identity()
	m[3], m[7], m[11] = t[0], t[1], t[2]
	return m
}

// FromMat3Translation builds an affine matrix that rotates by r then translates by t.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// MulPoint transforms a 3D point (w=1).
func (m Mat4) MulPoint(v Vec3) Vec3 {
	r := m.Rotation().MulVec3(v)
	return Vec3{r[0] + m[3], r[1] + m[7], r[2] + m[11]}
}

// Position returns where the frame's origin lands, i.e. the translation column.
func (m Mat4) Position() Vec3 {
	return m.MulPoint(Vec3{})
}

// Rotation returns the upper-left 3×3 block.
func (m Mat4) Rotation() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// ApproxEqual compares element-wise within tol.
func (m Mat4) ApproxEqual(o Mat4, tol float64) bool {
	for i := 0; i < 16; i++ {
		if math.Abs(m[i]-o[i]) > tol {
			return false
		}
	}
	return true
}
