package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d of %v", i, got)
	}
}

func TestMat4Mul_AppliesRightOperandFirst(t *testing.T) {
	rot := FromMat3Translation(RotZ(math.Pi/2), Vec3{})
	move := Translation(Vec3{1, 0, 0})

	// rotate then translate
	assertVec(t, Vec3{1, 1, 0}, Mat4Mul(move, rot).MulPoint(Vec3{1, 0, 0}))
	// translate then rotate
	assertVec(t, Vec3{0, 2, 0}, Mat4Mul(rot, move).MulPoint(Vec3{1, 0, 0}))
}

func TestAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"z quarter turn", Vec3{0, 0, 1}, math.Pi / 2, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"x quarter turn", Vec3{1, 0, 0}, math.Pi / 2, Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"unnormalized axis", Vec3{0, 0, 5}, math.Pi, Vec3{1, 0, 0}, Vec3{-1, 0, 0}},
		{"zero axis is identity", Vec3{}, 1.3, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertVec(t, tt.want, AxisAngle(tt.axis, tt.angle).MulVec3(tt.in))
		})
	}
}

func TestAxisAngleMatchesElementaryRotations(t *testing.T) {
	const a = 0.7
	for i, r := range []Mat3{RotX(a), RotY(a), RotZ(a)} {
		var axis Vec3
		axis[i] = 1
		got := AxisAngle(axis, a)
		for k := range r {
			assert.InDelta(t, r[k], got[k], 1e-12)
		}
	}
}

func TestMat4Helpers(t *testing.T) {
	m := FromMat3Translation(Mat3Identity(), Vec3{4, 5, 6})
	assert.Equal(t, Vec3{4, 5, 6}, m.Position())
	assert.Equal(t, Mat3Identity(), m.Rotation())
	assert.False(t, m.ApproxEqual(Mat4Identity(), 1e-8))
	assert.Equal(t, Vec3{5, 7, 9}, m.MulPoint(Vec3{1, 2, 3}))
	assert.True(t, Vec3{}.IsZero())
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}
