package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/urdf-visualizer/backend/internal/models"
)

// RobotXML represents the raw XML structure of a robot description.
type RobotXML struct {
	XMLName   xml.Name      `xml:"robot"`
	Name      string        `xml:"name,attr"`
	Materials []materialXML `xml:"material"`
	Links     []linkXML     `xml:"link"`
	Joints    []jointXML    `xml:"joint"`
}

type linkXML struct {
	Name       string         `xml:"name,attr"`
	Inertial   *inertialXML   `xml:"inertial"`
	Visuals    []visualXML    `xml:"visual"`
	Collisions []collisionXML `xml:"collision"`
}

type inertialXML struct {
	Origin *originXML `xml:"origin"`
	Mass   *struct {
		Value string `xml:"value,attr"`
	} `xml:"mass"`
	Inertia *struct {
		Ixx string `xml:"ixx,attr"`
		Ixy string `xml:"ixy,attr"`
		Ixz string `xml:"ixz,attr"`
		Iyy string `xml:"iyy,attr"`
		Iyz string `xml:"iyz,attr"`
		Izz string `xml:"izz,attr"`
	} `xml:"inertia"`
}

type visualXML struct {
	Origin   *originXML   `xml:"origin"`
	Geometry *geometryXML `xml:"geometry"`
	Material *materialXML `xml:"material"`
}

type collisionXML struct {
	Origin   *originXML   `xml:"origin"`
	Geometry *geometryXML `xml:"geometry"`
}

type geometryXML struct {
	Mesh *struct {
		Filename string `xml:"filename,attr"`
		Scale    string `xml:"scale,attr"`
	} `xml:"mesh"`
}

type materialXML struct {
	Name  string    `xml:"name,attr"`
	Color *colorXML `xml:"color"`
}

type colorXML struct {
	RGBA string `xml:"rgba,attr"`
}

type originXML struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type jointXML struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Origin *originXML `xml:"origin"`
	Parent *linkRef   `xml:"parent"`
	Child  *linkRef   `xml:"child"`
	Axis   *struct {
		XYZ string `xml:"xyz,attr"`
	} `xml:"axis"`
	Limit *struct {
		Lower    string `xml:"lower,attr"`
		Upper    string `xml:"upper,attr"`
		Effort   string `xml:"effort,attr"`
		Velocity string `xml:"velocity,attr"`
	} `xml:"limit"`
}

type linkRef struct {
	Link string `xml:"link,attr"`
}

// ParseFile parses a robot description file.
func ParseFile(filePath string) (*models.Robot, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	robot, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	return robot, nil
}

// Parse parses a robot description from a reader.
func Parse(r io.Reader) (*models.Robot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(data)
}

// ParseBytes parses a robot description held in memory. The first problem
// found is returned; a failed parse yields no robot.
func ParseBytes(data []byte) (*models.Robot, error) {
	var raw RobotXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	materials := make(map[string]*models.Color, len(raw.Materials))
	for _, m := range raw.Materials {
		c, err := parseColor(m.Color, "material "+m.Name)
		if err != nil {
			return nil, err
		}
		if m.Name != "" && c != nil {
			materials[m.Name] = c
		}
	}

	robot := &models.Robot{
		Name:   raw.Name,
		Links:  make([]models.Link, 0, len(raw.Links)),
		Joints: make([]models.Joint, 0, len(raw.Joints)),
	}

	seen := make(map[string]bool, len(raw.Links))
	for i, l := range raw.Links {
		if l.Name == "" {
			return nil, fmt.Errorf("%w: link %d has no name", ErrMalformedDocument, i)
		}
		if seen[l.Name] {
			return nil, fmt.Errorf("%w: duplicate link %q", ErrMalformedDocument, l.Name)
		}
		seen[l.Name] = true

		link, err := convertLink(l, materials)
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", l.Name, err)
		}
		robot.Links = append(robot.Links, link)
	}

	seen = make(map[string]bool, len(raw.Joints))
	for i, j := range raw.Joints {
		if j.Name == "" {
			return nil, fmt.Errorf("%w: joint %d has no name", ErrMalformedDocument, i)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("%w: duplicate joint %q", ErrMalformedDocument, j.Name)
		}
		seen[j.Name] = true

		joint, err := convertJoint(j)
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", j.Name, err)
		}
		robot.Joints = append(robot.Joints, joint)
	}

	return robot, nil
}

func convertLink(l linkXML, materials map[string]*models.Color) (models.Link, error) {
	link := models.Link{Name: l.Name}

	if in := l.Inertial; in != nil {
		inertial := &models.Inertial{}
		var err error
		if inertial.Origin, err = parseOrigin(in.Origin, "inertial origin"); err != nil {
			return link, err
		}
		if in.Mass != nil {
			if inertial.Mass, err = parseScalar(in.Mass.Value, "mass"); err != nil {
				return link, err
			}
		}
		if t := in.Inertia; t != nil {
			var tensor models.Inertia
			fields := []struct {
				attr, name string
				dst        *float64
			}{
				{t.Ixx, "ixx", &tensor.Ixx}, {t.Ixy, "ixy", &tensor.Ixy}, {t.Ixz, "ixz", &tensor.Ixz},
				{t.Iyy, "iyy", &tensor.Iyy}, {t.Iyz, "iyz", &tensor.Iyz}, {t.Izz, "izz", &tensor.Izz},
			}
			for _, f := range fields {
				if *f.dst, err = parseScalar(f.attr, "inertia "+f.name); err != nil {
					return link, err
				}
			}
			inertial.Inertia = &tensor
		}
		link.Inertial = inertial
	}

	if len(l.Visuals) > 0 {
		v := l.Visuals[0]
		visual := &models.Visual{}
		var err error
		if visual.Origin, err = parseOrigin(v.Origin, "visual origin"); err != nil {
			return link, err
		}
		if visual.Geometry, err = convertGeometry(v.Geometry); err != nil {
			return link, err
		}
		if m := v.Material; m != nil {
			material := &models.Material{Name: m.Name}
			if material.Color, err = parseColor(m.Color, "material"); err != nil {
				return link, err
			}
			if material.Color == nil {
				material.Color = materials[m.Name]
			}
			visual.Material = material
		}
		link.Visual = visual
	}

	if len(l.Collisions) > 0 {
		c := l.Collisions[0]
		collision := &models.Collision{}
		var err error
		if collision.Origin, err = parseOrigin(c.Origin, "collision origin"); err != nil {
			return link, err
		}
		if collision.Geometry, err = convertGeometry(c.Geometry); err != nil {
			return link, err
		}
		link.Collision = collision
	}

	return link, nil
}

func convertGeometry(g *geometryXML) (*models.Geometry, error) {
	if g == nil {
		return nil, nil
	}
	geometry := &models.Geometry{}
	if g.Mesh != nil {
		scale, err := parseVec3(g.Mesh.Scale, "mesh scale")
		if err != nil {
			return nil, err
		}
		geometry.Mesh = &models.Mesh{Filename: g.Mesh.Filename, Scale: scale}
	}
	return geometry, nil
}

func convertJoint(j jointXML) (models.Joint, error) {
	joint := models.Joint{Name: j.Name}

	if j.Type == "" {
		return joint, fmt.Errorf("%w: missing type", ErrMalformedDocument)
	}
	t, err := ParseJointType(j.Type)
	if err != nil {
		return joint, err
	}
	joint.Type = t

	if j.Parent == nil || j.Parent.Link == "" {
		return joint, fmt.Errorf("%w: missing parent link", ErrMalformedDocument)
	}
	if j.Child == nil || j.Child.Link == "" {
		return joint, fmt.Errorf("%w: missing child link", ErrMalformedDocument)
	}
	joint.Parent = j.Parent.Link
	joint.Child = j.Child.Link

	if joint.Origin, err = parseOrigin(j.Origin, "origin"); err != nil {
		return joint, err
	}

	if j.Axis != nil {
		if joint.Axis, err = parseVec3(j.Axis.XYZ, "axis"); err != nil {
			return joint, err
		}
	}

	if lim := j.Limit; lim != nil {
		limit := &models.Limit{}
		fields := []struct {
			attr, name string
			dst        *float64
		}{
			{lim.Lower, "lower", &limit.Lower},
			{lim.Upper, "upper", &limit.Upper},
			{lim.Effort, "effort", &limit.Effort},
			{lim.Velocity, "velocity", &limit.Velocity},
		}
		for _, f := range fields {
			if *f.dst, err = parseScalar(f.attr, "limit "+f.name); err != nil {
				return joint, err
			}
		}
		joint.Limit = limit
	}

	return joint, nil
}
