package models

// MeshStatus tells whether a mesh reference was found on disk.
type MeshStatus string

const (
	MeshResolved   MeshStatus = "resolved"
	MeshUnresolved MeshStatus = "unresolved"
)

// MeshKind distinguishes visual from collision geometry.
type MeshKind string

const (
	MeshVisual    MeshKind = "visual"
	MeshCollision MeshKind = "collision"
)

// MeshReference is the resolution outcome for one link mesh. An unresolved
// reference is not an error; the renderer substitutes a placeholder.
type MeshReference struct {
	Link       string     `json:"link"`
	Kind       MeshKind   `json:"kind"`
	Reference  string     `json:"reference"`
	Path       string     `json:"path,omitempty"`
	Status     MeshStatus `json:"status"`
	Suggestion string     `json:"suggestion,omitempty"`
}

// FileNode is one entry of a package directory listing.
type FileNode struct {
	Name        string      `json:"name"`
	FullPath    string      `json:"fullPath"`
	IsDirectory bool        `json:"isDirectory"`
	Children    []*FileNode `json:"children,omitempty"`
}
