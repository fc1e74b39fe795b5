package models

// SessionStatus represents the status of a robot session.
type SessionStatus string

const (
	SessionStatusReady SessionStatus = "ready"
	SessionStatusError SessionStatus = "error"
)

// RobotSession describes an open robot description and its actuation state.
type RobotSession struct {
	ID           string        `json:"id"`
	FileID       string        `json:"fileId,omitempty"`
	DocumentPath string        `json:"documentPath"`
	PackageRoot  string        `json:"packageRoot,omitempty"`
	Warning      string        `json:"warning,omitempty"` // set when no package root could be located
	RobotName    string        `json:"robotName,omitempty"`
	BaseLink     string        `json:"baseLink"`
	Status       SessionStatus `json:"status"`
	Stats        RobotStats    `json:"stats"`
	Revision     int           `json:"revision"` // bumped on every successful (re)load
	Sequence     int64         `json:"sequence"` // bumped on every actuation change
	OpenedAt     int64         `json:"openedAt"` // Unix ms
	LoadedAt     int64         `json:"loadedAt"` // Unix ms
	Watching     bool          `json:"watching"`
	Error        string        `json:"error,omitempty"`
}

// JointControl is the actuation range offered for one non-fixed joint.
type JointControl struct {
	Name  string    `json:"name"`
	Type  JointType `json:"type"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Value float64   `json:"value"`
}
