package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urdf-visualizer/backend/internal/models"
)

// jointTypes maps the case-sensitive type attribute onto the closed enum.
var jointTypes = map[string]models.JointType{
	"revolute":   models.JointRevolute,
	"continuous": models.JointContinuous,
	"prismatic":  models.JointPrismatic,
	"fixed":      models.JointFixed,
	"floating":   models.JointFloating,
	"planar":     models.JointPlanar,
}

// ParseJointType decodes a joint type token.
func ParseJointType(token string) (models.JointType, error) {
	t, ok := jointTypes[token]
	if !ok {
		return 0, fmt.Errorf("%w: unknown joint type %q", ErrMalformedDocument, token)
	}
	return t, nil
}

// ParseVector decodes a whitespace-separated attribute into exactly n
// components. Missing components are 0, extra ones are ignored, and a blank
// attribute yields all zeros. Only a component that is present but not a
// number is an error.
func ParseVector(attr string, n int) ([]float64, error) {
	out := make([]float64, n)
	fields := strings.Fields(attr)
	for i := 0; i < n && i < len(fields); i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d %q", ErrInvalidNumericLiteral, i, fields[i])
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(attr, field string) ([3]float64, error) {
	var v [3]float64
	c, err := ParseVector(attr, 3)
	if err != nil {
		return v, fmt.Errorf("%s: %w", field, err)
	}
	copy(v[:], c)
	return v, nil
}

func parseScalar(attr, field string) (float64, error) {
	c, err := ParseVector(attr, 1)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return c[0], nil
}

func parseOrigin(raw *originXML, field string) (*models.Origin, error) {
	if raw == nil {
		return nil, nil
	}
	xyz, err := parseVec3(raw.XYZ, field+" xyz")
	if err != nil {
		return nil, err
	}
	rpy, err := parseVec3(raw.RPY, field+" rpy")
	if err != nil {
		return nil, err
	}
	return &models.Origin{
		X: xyz[0], Y: xyz[1], Z: xyz[2],
		Roll: rpy[0], Pitch: rpy[1], Yaw: rpy[2],
	}, nil
}

func parseColor(raw *colorXML, field string) (*models.Color, error) {
	if raw == nil {
		return nil, nil
	}
	c, err := ParseVector(raw.RGBA, 4)
	if err != nil {
		return nil, fmt.Errorf("%s rgba: %w", field, err)
	}
	return &models.Color{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
