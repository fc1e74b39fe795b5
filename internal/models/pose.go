package models

// LinkTransform is the world pose of one link as a row-major 4×4 matrix.
type LinkTransform struct {
	Link     string      `json:"link" msgpack:"link"`
	Matrix   [16]float64 `json:"matrix" msgpack:"matrix"`
	Position [3]float64  `json:"position" msgpack:"position"`
}

// PoseSnapshot is one consistent forward-kinematics result.
// Links absent from Transforms have no known pose.
type PoseSnapshot struct {
	SessionID   string             `json:"sessionId" msgpack:"sessionId"`
	BaseLink    string             `json:"baseLink" msgpack:"baseLink"`
	Sequence    int64              `json:"sequence" msgpack:"sequence"`
	JointValues map[string]float64 `json:"jointValues" msgpack:"jointValues"`
	Transforms  []LinkTransform    `json:"transforms" msgpack:"transforms"`
	Missing     []string           `json:"missing,omitempty" msgpack:"missing,omitempty"`
}

// JointFrame is the world frame of a joint, which coincides with its child link.
type JointFrame struct {
	Joint    string      `json:"joint"`
	Child    string      `json:"child"`
	Matrix   [16]float64 `json:"matrix"`
	Position [3]float64  `json:"position"`
}

// PoseSample is one recorded link position from the pose history.
type PoseSample struct {
	Sequence   int64      `json:"sequence"`
	RecordedAt int64      `json:"recordedAt"` // Unix ms
	Link       string     `json:"link"`
	Position   [3]float64 `json:"position"`
}

// JointPreset is a named set of joint values loaded from YAML.
type JointPreset struct {
	Name     string             `json:"name" yaml:"name"`
	BaseLink string             `json:"baseLink,omitempty" yaml:"base_link,omitempty"`
	Joints   map[string]float64 `json:"joints" yaml:"joints"`
}
