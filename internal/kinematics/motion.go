package kinematics

import (
	"github.com/urdf-visualizer/backend/internal/mathutil"
	"github.com/urdf-visualizer/backend/internal/models"
)

// OriginTransform returns the static offset of o: roll about X is applied
// first, then pitch about Y, then yaw about Z, then the translation.
// A nil origin is the identity.
func OriginTransform(o *models.Origin) mathutil.Mat4 {
	if o == nil {
		return mathutil.Mat4Identity()
	}
	rot := mathutil.Mat3Mul(mathutil.RotZ(o.Yaw), mathutil.Mat3Mul(mathutil.RotY(o.Pitch), mathutil.RotX(o.Roll)))
	return mathutil.FromMat3Translation(rot, mathutil.Vec3{o.X, o.Y, o.Z})
}

// MotionTransform returns the displacement produced by the joint's current
// value. Fixed, floating and planar joints never move, and neither does a
// joint whose axis has zero length.
func MotionTransform(j *models.Joint) mathutil.Mat4 {
	axis := mathutil.Vec3(j.Axis).Normalize()
	if axis.IsZero() {
		return mathutil.Mat4Identity()
	}

	switch j.Type {
	case models.JointRevolute, models.JointContinuous:
		return mathutil.FromMat3Translation(mathutil.AxisAngle(axis, j.JointValue), mathutil.Vec3{})
	case models.JointPrismatic:
		return mathutil.Translation(axis.Scale(j.JointValue))
	case models.JointFixed, models.JointFloating, models.JointPlanar:
		return mathutil.Mat4Identity()
	default:
		return mathutil.Mat4Identity()
	}
}

// JointTransform maps points in the child frame into the parent frame:
// motion first, then the origin offset.
func JointTransform(j *models.Joint) mathutil.Mat4 {
	return mathutil.Mat4Mul(OriginTransform(j.Origin), MotionTransform(j))
}
