// Package mesh maps logical mesh references from a robot description onto
// files inside a description package.
package mesh

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/urdf-visualizer/backend/internal/models"
)

const (
	packageScheme = "package://"
	fileScheme    = "file://"
)

// LocalPath returns the on-disk path a reference points at, without
// checking that it exists. "package://<pkg>/<rest>" becomes
// packageRoot/<rest>; the package name itself is not used. Other
// references are returned as given, minus any file:// prefix. ok is false
// for a package reference when packageRoot is empty.
func LocalPath(ref, packageRoot string) (p string, ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	if rest, found := strings.CutPrefix(ref, packageScheme); found {
		if packageRoot == "" {
			return "", false
		}
		rest = strings.ReplaceAll(rest, `\`, "/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[i+1:]
		}
		return filepath.Join(packageRoot, filepath.FromSlash(rest)), true
	}

	ref = strings.TrimPrefix(ref, fileScheme)
	return filepath.Clean(filepath.FromSlash(strings.ReplaceAll(ref, `\`, "/"))), true
}

// Resolve finds the file a mesh reference names. When the direct location
// does not exist, packageRoot/meshes is searched for a file with the same
// name (see Index.Find). The second result is false when nothing matches;
// that is an expected outcome, not an error.
func Resolve(ref, packageRoot string) (string, bool) {
	if p, ok := LocalPath(ref, packageRoot); ok && isFile(p) {
		return p, true
	}
	if packageRoot == "" {
		return "", false
	}
	return BuildIndex(packageRoot).Find(ref)
}

// ResolveRobot resolves every visual and collision mesh of robot, in link
// order. The package is scanned at most once.
func ResolveRobot(robot *models.Robot, packageRoot string) []models.MeshReference {
	var idx *Index
	index := func() *Index {
		if idx == nil {
			idx = BuildIndex(packageRoot)
		}
		return idx
	}

	var refs []models.MeshReference
	add := func(link string, kind models.MeshKind, ref string) {
		if ref == "" {
			return
		}
		mr := models.MeshReference{Link: link, Kind: kind, Reference: ref, Status: models.MeshUnresolved}

		p, ok := LocalPath(ref, packageRoot)
		if ok && isFile(p) {
			mr.Path, mr.Status = p, models.MeshResolved
		} else if packageRoot != "" {
			if p, ok := index().Find(ref); ok {
				mr.Path, mr.Status = p, models.MeshResolved
			} else {
				mr.Suggestion = index().Suggest(ref)
			}
		}
		refs = append(refs, mr)
	}

	for _, l := range robot.Links {
		add(l.Name, models.MeshVisual, l.VisualMesh())
		add(l.Name, models.MeshCollision, l.CollisionMesh())
	}
	return refs
}

// refBase returns the lowercase file name of a reference.
func refBase(ref string) string {
	ref = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(ref), packageScheme), fileScheme)
	ref = strings.ReplaceAll(ref, `\`, "/")
	base := path.Base(ref)
	if base == "." || base == "/" {
		return ""
	}
	return strings.ToLower(base)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
