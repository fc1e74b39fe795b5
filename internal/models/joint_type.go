package models

import (
	"encoding/json"
	"fmt"
)

// JointType is the closed set of joint kinds a description may declare.
type JointType int

const (
	JointRevolute JointType = iota
	JointContinuous
	JointPrismatic
	JointFixed
	JointFloating
	JointPlanar
)

var jointTypeNames = [...]string{
	JointRevolute:   "revolute",
	JointContinuous: "continuous",
	JointPrismatic:  "prismatic",
	JointFixed:      "fixed",
	JointFloating:   "floating",
	JointPlanar:     "planar",
}

// String returns the document token of the joint type.
func (t JointType) String() string {
	if t < 0 || int(t) >= len(jointTypeNames) {
		return fmt.Sprintf("JointType(%d)", int(t))
	}
	return jointTypeNames[t]
}

// MarshalJSON encodes the type as its document token.
func (t JointType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the document token.
func (t *JointType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range jointTypeNames {
		if name == s {
			*t = JointType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown joint type %q", s)
}

// MarshalYAML encodes the type as its document token.
func (t JointType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
