package kinematics

import "github.com/urdf-visualizer/backend/internal/models"

// LinkTransforms flattens t in link declaration order. Links without a
// transform are reported in missing.
func LinkTransforms(robot *models.Robot, t Transforms) (list []models.LinkTransform, missing []string) {
	list = make([]models.LinkTransform, 0, len(robot.Links))
	for _, l := range robot.Links {
		m, ok := t[l.Name]
		if !ok {
			missing = append(missing, l.Name)
			continue
		}
		list = append(list, models.LinkTransform{
			Link:     l.Name,
			Matrix:   m,
			Position: m.Position(),
		})
	}
	return list, missing
}

// JointFrames returns the world frame of each joint, keyed by its child
// link: the frame after motion and origin are applied, which is the child
// link's own transform. Joints whose child was not resolved are skipped.
func JointFrames(robot *models.Robot, t Transforms) []models.JointFrame {
	frames := make([]models.JointFrame, 0, len(robot.Joints))
	for _, j := range robot.Joints {
		m, ok := t[j.Child]
		if !ok {
			continue
		}
		frames = append(frames, models.JointFrame{
			Joint:    j.Name,
			Child:    j.Child,
			Matrix:   m,
			Position: m.Position(),
		})
	}
	return frames
}
