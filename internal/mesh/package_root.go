package mesh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ErrPackageRootNotFound is returned when no ancestor of a document holds
// both a urdf and a meshes directory.
var ErrPackageRootNotFound = errors.New("package root not found")

// URDFDir is the package subdirectory holding description documents.
const URDFDir = "urdf"

// LocatePackageRoot walks up from the directory containing docPath and
// returns the closest directory that has both a urdf and a meshes
// subdirectory.
func LocatePackageRoot(docPath string) (string, error) {
	p, err := ExpandPath(docPath)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(p)
	for {
		if isDir(filepath.Join(dir, URDFDir)) && isDir(filepath.Join(dir, MeshesDir)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: %s", ErrPackageRootNotFound, docPath)
}

// ExpandPath expands a leading ~ and makes p absolute.
func ExpandPath(p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", p, err)
	}
	return abs, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
