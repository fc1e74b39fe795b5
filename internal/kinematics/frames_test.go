package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urdf-visualizer/backend/internal/testutil"
)

func TestLinkTransforms(t *testing.T) {
	robot := mustParse(t, `<robot>
  <link name="base_link"/><link name="a"/><link name="lost"/>
  <joint name="j" type="fixed"><origin xyz="0 0 1"/><parent link="base_link"/><child link="a"/></joint>
</robot>`)

	transforms, err := Resolve(robot, "base_link")
	require.NoError(t, err)

	list, missing := LinkTransforms(robot, transforms)
	require.Len(t, list, 2)
	assert.Equal(t, "base_link", list[0].Link)
	assert.Equal(t, "a", list[1].Link)
	assert.Equal(t, [3]float64{0, 0, 1}, list[1].Position)
	assert.Equal(t, []string{"lost"}, missing)
}

func TestJointFrames(t *testing.T) {
	robot := mustParse(t, testutil.ArmURDF)
	robot.Joints[1].JointValue = math.Pi

	transforms, err := Resolve(robot, "mount")
	require.NoError(t, err)

	frames := JointFrames(robot, transforms)
	require.Len(t, frames, 4)

	byJoint := map[string][3]float64{}
	for _, f := range frames {
		assert.Equal(t, [16]float64(transforms[f.Child]), f.Matrix)
		byJoint[f.Joint] = f.Position
	}
	assert.Equal(t, [3]float64{}, byJoint["mount_joint"], "the base link's incoming joint sits at the origin")
	assert.InDelta(t, -0.5, byJoint["elbow_joint"][0], tol)
}
