package kinematics

import (
	"errors"
	"fmt"

	"github.com/urdf-visualizer/backend/internal/mathutil"
	"github.com/urdf-visualizer/backend/internal/models"
)

// ErrCyclicTopology is returned when a link is its own ancestor.
var ErrCyclicTopology = errors.New("cyclic joint topology")

// Transforms maps link names to world transforms. A missing key means the
// pose is unknown, never identity.
type Transforms map[string]mathutil.Mat4

type linkState uint8

const (
	unvisited linkState = iota
	pending
	resolved
	absent
)

// Resolve computes the world transform of every link reachable from
// baseLink through the child→parent relation, using the current JointValue
// of each joint. baseLink is always present as the identity, even when the
// robot declares no such link.
//
// When two joints name the same child the later one wins. Links without an
// incoming joint, or whose ancestry does not reach baseLink, are omitted.
func Resolve(robot *models.Robot, baseLink string) (Transforms, error) {
	out := Transforms{baseLink: mathutil.Mat4Identity()}

	incoming := make(map[string]*models.Joint, len(robot.Joints))
	for i := range robot.Joints {
		j := &robot.Joints[i]
		if j.Child != "" {
			incoming[j.Child] = j
		}
	}

	state := map[string]linkState{baseLink: resolved}
	stack := make([]string, 0, 16)

	for _, l := range robot.Links {
		stack = append(stack[:0], l.Name)

		for len(stack) > 0 {
			name := stack[len(stack)-1]
			j := incoming[name]

			switch state[name] {
			case resolved, absent:
				stack = stack[:len(stack)-1]
				continue
			case unvisited:
				if j == nil {
					state[name] = absent
					stack = stack[:len(stack)-1]
					continue
				}
				state[name] = pending
				switch state[j.Parent] {
				case pending:
					return nil, fmt.Errorf("%w: link %q via joint %q", ErrCyclicTopology, name, j.Name)
				case unvisited:
					stack = append(stack, j.Parent)
					continue
				}
			}

			// Parent is settled.
			if state[j.Parent] == resolved {
				out[name] = mathutil.Mat4Mul(out[j.Parent], JointTransform(j))
				state[name] = resolved
			} else {
				state[name] = absent
			}
			stack = stack[:len(stack)-1]
		}
	}

	return out, nil
}
