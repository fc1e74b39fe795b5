package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/urdf-visualizer/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ParsePresetFile parses a YAML joint preset, e.g.
//
//	name: home
//	base_link: base_link
//	joints:
//	  shoulder_pan: 0.5
//	  elbow: -1.2
func ParsePresetFile(filePath string) (*models.JointPreset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParsePresetFromReader(file)
}

// ParsePresetFromReader parses a preset from an io.Reader.
func ParsePresetFromReader(r io.Reader) (*models.JointPreset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var preset models.JointPreset
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: preset: %v", ErrMalformedDocument, err)
	}
	if preset.Joints == nil {
		preset.Joints = make(map[string]float64)
	}

	return &preset, nil
}

// MarshalPreset renders a preset back to YAML.
func MarshalPreset(p *models.JointPreset) ([]byte, error) {
	return yaml.Marshal(p)
}
