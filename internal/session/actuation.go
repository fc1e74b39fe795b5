package session

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/urdf-visualizer/backend/internal/models"
)

// subscriberBuffer is how many snapshots a slow subscriber may lag behind
// before updates to it are dropped.
const subscriberBuffer = 16

// Controls returns the actuation range of every non-fixed joint, in
// declaration order. Joints with a usable limit offer [lower, upper];
// the others offer ±DefaultRange.
func (m *Manager) Controls(id string) ([]models.JointControl, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	controls := make([]models.JointControl, 0, len(state.robot.Joints))
	for _, j := range state.robot.Joints {
		if j.Type == models.JointFixed {
			continue
		}
		c := models.JointControl{
			Name:  j.Name,
			Type:  j.Type,
			Min:   -m.opts.DefaultRange,
			Max:   m.opts.DefaultRange,
			Value: j.JointValue,
		}
		if hasRange(&j) {
			c.Min, c.Max = j.Limit.Lower, j.Limit.Upper
		}
		controls = append(controls, c)
	}
	return controls, nil
}

// SetJointValues applies values to the named joints and resolves the new
// pose. Either all values are applied or none.
func (m *Manager) SetJointValues(ctx context.Context, id string, values map[string]float64) (*models.PoseSnapshot, error) {
	return m.actuate(ctx, id, func(s *robotState) error {
		return s.applyLocked(values, m.opts.ClampToLimits)
	})
}

// ResetJoints sets every joint value back to zero.
func (m *Manager) ResetJoints(ctx context.Context, id string) (*models.PoseSnapshot, error) {
	return m.actuate(ctx, id, func(s *robotState) error {
		for i := range s.robot.Joints {
			s.robot.Joints[i].JointValue = 0
		}
		return nil
	})
}

// ApplyPreset applies a named set of joint values, switching the base link
// first when the preset names one.
func (m *Manager) ApplyPreset(ctx context.Context, id string, preset *models.JointPreset) (*models.PoseSnapshot, error) {
	return m.actuate(ctx, id, func(s *robotState) error {
		if preset.BaseLink != "" {
			if _, ok := s.robot.Link(preset.BaseLink); !ok {
				return fmt.Errorf("%w: unknown base link %q", ErrValidation, preset.BaseLink)
			}
		}
		if err := s.applyLocked(preset.Joints, m.opts.ClampToLimits); err != nil {
			return err
		}
		if preset.BaseLink != "" {
			s.session.BaseLink = preset.BaseLink
		}
		return nil
	})
}

// actuate runs change under the session lock, then resolves, publishes and
// records the resulting pose. A failed resolve rolls the change back.
func (m *Manager) actuate(ctx context.Context, id string, change func(*robotState) error) (*models.PoseSnapshot, error) {
	state, err := m.state(id)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	prevValues := state.robot.JointValues()
	prevBase := state.session.BaseLink

	if err := change(state); err != nil {
		state.mu.Unlock()
		return nil, err
	}
	state.session.Sequence++
	snap, err := state.snapshotLocked()
	if err != nil {
		for i := range state.robot.Joints {
			state.robot.Joints[i].JointValue = prevValues[state.robot.Joints[i].Name]
		}
		state.session.BaseLink = prevBase
		state.session.Sequence--
		state.mu.Unlock()
		return nil, err
	}
	state.lastAccessed = time.Now()
	state.publishLocked(snap)
	state.mu.Unlock()

	m.record(ctx, snap)
	return snap, nil
}

// applyLocked validates every value before changing any joint.
func (s *robotState) applyLocked(values map[string]float64, clamp bool) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := s.robot.Joint(name); !ok {
			return fmt.Errorf("%w: unknown joint %q", ErrValidation, name)
		}
		if v := values[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: joint %q value is not finite", ErrValidation, name)
		}
	}

	for _, name := range names {
		j, _ := s.robot.Joint(name)
		v := values[name]
		if clamp && hasRange(j) && (j.Type == models.JointRevolute || j.Type == models.JointPrismatic) {
			v = math.Max(j.Limit.Lower, math.Min(j.Limit.Upper, v))
		}
		j.JointValue = v
	}
	return nil
}

func hasRange(j *models.Joint) bool {
	return j.Limit != nil && j.Limit.Lower < j.Limit.Upper
}

// Subscribe streams every pose resolved after a change to the session. The
// channel is closed when the session ends; cancel stops the stream early.
func (m *Manager) Subscribe(id string) (<-chan *models.PoseSnapshot, func(), error) {
	state, err := m.state(id)
	if err != nil {
		return nil, nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	key := state.nextSub
	state.nextSub++
	ch := make(chan *models.PoseSnapshot, subscriberBuffer)
	state.subscribers[key] = ch

	cancel := func() {
		state.mu.Lock()
		defer state.mu.Unlock()
		if c, ok := state.subscribers[key]; ok {
			close(c)
			delete(state.subscribers, key)
		}
	}
	return ch, cancel, nil
}

// publishLocked hands snap to every subscriber without blocking.
func (s *robotState) publishLocked(snap *models.PoseSnapshot) {
	for _, ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
		}
	}
}
