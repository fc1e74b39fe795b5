// Package models contains domain types for the URDF visualizer backend.
package models

import (
	"fmt"
	"strings"
)

// Robot is a parsed robot description. It owns its links and joints; derived
// artifacts (kinematic tree, transforms) refer to them by name only.
type Robot struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Links  []Link  `json:"links" yaml:"links"`
	Joints []Joint `json:"joints" yaml:"joints"`
}

// Link is a rigid body of the robot.
type Link struct {
	Name      string     `json:"name" yaml:"name"`
	Inertial  *Inertial  `json:"inertial,omitempty" yaml:"inertial,omitempty"`
	Visual    *Visual    `json:"visual,omitempty" yaml:"visual,omitempty"`
	Collision *Collision `json:"collision,omitempty" yaml:"collision,omitempty"`
}

// Inertial holds the mass properties of a link.
type Inertial struct {
	Origin  *Origin  `json:"origin,omitempty" yaml:"origin,omitempty"`
	Mass    float64  `json:"mass" yaml:"mass"`
	Inertia *Inertia `json:"inertia,omitempty" yaml:"inertia,omitempty"`
}

// Inertia is the upper triangle of the symmetric 3×3 inertia tensor.
type Inertia struct {
	Ixx float64 `json:"ixx" yaml:"ixx"`
	Ixy float64 `json:"ixy" yaml:"ixy"`
	Ixz float64 `json:"ixz" yaml:"ixz"`
	Iyy float64 `json:"iyy" yaml:"iyy"`
	Iyz float64 `json:"iyz" yaml:"iyz"`
	Izz float64 `json:"izz" yaml:"izz"`
}

// Visual describes how a link is drawn.
type Visual struct {
	Origin   *Origin   `json:"origin,omitempty" yaml:"origin,omitempty"`
	Geometry *Geometry `json:"geometry,omitempty" yaml:"geometry,omitempty"`
	Material *Material `json:"material,omitempty" yaml:"material,omitempty"`
}

// Collision describes the collision shape of a link.
type Collision struct {
	Origin   *Origin   `json:"origin,omitempty" yaml:"origin,omitempty"`
	Geometry *Geometry `json:"geometry,omitempty" yaml:"geometry,omitempty"`
}

// Geometry only carries mesh references; primitive shapes are ignored.
type Geometry struct {
	Mesh *Mesh `json:"mesh,omitempty" yaml:"mesh,omitempty"`
}

// Mesh is a logical mesh file reference, e.g. "package://arm/meshes/base.stl".
type Mesh struct {
	Filename string     `json:"filename" yaml:"filename"`
	Scale    [3]float64 `json:"scale" yaml:"scale"`
}

// Material is a named color.
type Material struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Color *Color `json:"color,omitempty" yaml:"color,omitempty"`
}

// Color is an RGBA quadruple, each component in [0,1] by convention.
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

// Origin is a static offset: translation plus roll/pitch/yaw in radians.
type Origin struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Z     float64 `json:"z" yaml:"z"`
	Roll  float64 `json:"roll" yaml:"roll"`
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
}

// Joint connects a parent link to a child link.
type Joint struct {
	Name   string     `json:"name" yaml:"name"`
	Type   JointType  `json:"type" yaml:"type"`
	Origin *Origin    `json:"origin,omitempty" yaml:"origin,omitempty"`
	Parent string     `json:"parent" yaml:"parent"`
	Child  string     `json:"child" yaml:"child"`
	Axis   [3]float64 `json:"axis" yaml:"axis"`
	Limit  *Limit     `json:"limit,omitempty" yaml:"limit,omitempty"`

	// JointValue is the current actuation: radians for rotational joints,
	// length units for prismatic ones. Runtime only, never written back.
	JointValue float64 `json:"jointValue" yaml:"jointValue"`
}

// Limit bounds a joint's motion.
type Limit struct {
	Lower    float64 `json:"lower" yaml:"lower"`
	Upper    float64 `json:"upper" yaml:"upper"`
	Effort   float64 `json:"effort" yaml:"effort"`
	Velocity float64 `json:"velocity" yaml:"velocity"`
}

// RobotStats summarizes a robot for status displays.
type RobotStats struct {
	Links  int `json:"links"`
	Joints int `json:"joints"`
	Meshes int `json:"meshes"`
}

// Link returns the link with the given name.
func (r *Robot) Link(name string) (*Link, bool) {
	for i := range r.Links {
		if r.Links[i].Name == name {
			return &r.Links[i], true
		}
	}
	return nil, false
}

// Joint returns the joint with the given name.
func (r *Robot) Joint(name string) (*Joint, bool) {
	for i := range r.Joints {
		if r.Joints[i].Name == name {
			return &r.Joints[i], true
		}
	}
	return nil, false
}

// Stats counts links, joints and links with a visual mesh.
func (r *Robot) Stats() RobotStats {
	stats := RobotStats{Links: len(r.Links), Joints: len(r.Joints)}
	for _, l := range r.Links {
		if l.VisualMesh() != "" {
			stats.Meshes++
		}
	}
	return stats
}

// JointValues returns the current actuation of every joint.
func (r *Robot) JointValues() map[string]float64 {
	values := make(map[string]float64, len(r.Joints))
	for _, j := range r.Joints {
		values[j.Name] = j.JointValue
	}
	return values
}

// Clone returns a deep copy, safe to hand out while the original keeps mutating.
func (r *Robot) Clone() *Robot {
	out := &Robot{
		Name:   r.Name,
		Links:  make([]Link, len(r.Links)),
		Joints: make([]Joint, len(r.Joints)),
	}
	for i, l := range r.Links {
		out.Links[i] = l.clone()
	}
	for i, j := range r.Joints {
		if j.Origin != nil {
			o := *j.Origin
			j.Origin = &o
		}
		if j.Limit != nil {
			lim := *j.Limit
			j.Limit = &lim
		}
		out.Joints[i] = j
	}
	return out
}

func (l Link) clone() Link {
	if l.Inertial != nil {
		in := *l.Inertial
		in.Origin = in.Origin.clone()
		if in.Inertia != nil {
			t := *in.Inertia
			in.Inertia = &t
		}
		l.Inertial = &in
	}
	if l.Visual != nil {
		v := *l.Visual
		v.Origin = v.Origin.clone()
		v.Geometry = v.Geometry.clone()
		if v.Material != nil {
			m := *v.Material
			if m.Color != nil {
				c := *m.Color
				m.Color = &c
			}
			v.Material = &m
		}
		l.Visual = &v
	}
	if l.Collision != nil {
		c := *l.Collision
		c.Origin = c.Origin.clone()
		c.Geometry = c.Geometry.clone()
		l.Collision = &c
	}
	return l
}

func (o *Origin) clone() *Origin {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func (g *Geometry) clone() *Geometry {
	if g == nil {
		return nil
	}
	c := *g
	if c.Mesh != nil {
		m := *c.Mesh
		c.Mesh = &m
	}
	return &c
}

// VisualMesh returns the visual mesh filename or "".
func (l Link) VisualMesh() string {
	if l.Visual == nil || l.Visual.Geometry == nil || l.Visual.Geometry.Mesh == nil {
		return ""
	}
	return l.Visual.Geometry.Mesh.Filename
}

// CollisionMesh returns the collision mesh filename or "".
func (l Link) CollisionMesh() string {
	if l.Collision == nil || l.Collision.Geometry == nil || l.Collision.Geometry.Mesh == nil {
		return ""
	}
	return l.Collision.Geometry.Mesh.Filename
}

func (r *Robot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Robot: %s\n", r.Name)
	fmt.Fprintf(&b, "Links (%d):\n", len(r.Links))
	for _, l := range r.Links {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	fmt.Fprintf(&b, "Joints (%d):\n", len(r.Joints))
	for _, j := range r.Joints {
		fmt.Fprintf(&b, "  %s\n", j)
	}
	return b.String()
}

func (l Link) String() string {
	s := "Link: " + l.Name
	if m := l.VisualMesh(); m != "" {
		s += ", Mesh=" + m
	}
	if l.Visual != nil && l.Visual.Origin != nil {
		s += fmt.Sprintf(", VisualOrigin=(%s)", l.Visual.Origin)
	}
	return s
}

func (j Joint) String() string {
	s := fmt.Sprintf("Joint: %s, Type=%s, Parent=%s, Child=%s, Axis=(%g %g %g)",
		j.Name, j.Type, j.Parent, j.Child, j.Axis[0], j.Axis[1], j.Axis[2])
	if j.Origin != nil {
		s += fmt.Sprintf(", Origin=(%s)", j.Origin)
	}
	return s + fmt.Sprintf(", JointValue=%g", j.JointValue)
}

func (o *Origin) String() string {
	return fmt.Sprintf("xyz=%g %g %g rpy=%g %g %g", o.X, o.Y, o.Z, o.Roll, o.Pitch, o.Yaw)
}

// TreeNode is one link in a nested view of the kinematic tree. Joint is the
// joint connecting it to its parent node and is empty for roots.
type TreeNode struct {
	Link      string      `json:"link" yaml:"link"`
	Joint     string      `json:"joint,omitempty" yaml:"joint,omitempty"`
	JointType string      `json:"jointType,omitempty" yaml:"joint_type,omitempty"`
	Children  []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}
