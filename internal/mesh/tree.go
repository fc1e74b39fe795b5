package mesh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urdf-visualizer/backend/internal/models"
)

// ErrTreeTooLarge is returned when a directory listing exceeds the depth or
// entry cap.
var ErrTreeTooLarge = errors.New("directory tree too large")

// Listing caps for ListTree.
var (
	maxTreeDepth   = 16
	maxTreeEntries = 10000
)

// ListTree returns the directory tree rooted at root. Within a directory,
// subdirectories come first, then files, each in name order. Symlinked
// directories are listed as entries but not followed.
func ListTree(root string) (*models.FileNode, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list %s: not a directory", root)
	}
	w := &treeWalker{root: root}
	return w.listDir(root, 0)
}

type treeWalker struct {
	root    string
	entries int
}

func (w *treeWalker) listDir(dir string, depth int) (*models.FileNode, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("%w: %s is deeper than %d levels", ErrTreeTooLarge, w.root, maxTreeDepth)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	w.entries += len(entries)
	if w.entries > maxTreeEntries {
		return nil, fmt.Errorf("%w: %s has more than %d entries", ErrTreeTooLarge, w.root, maxTreeEntries)
	}

	node := &models.FileNode{
		Name:        filepath.Base(dir),
		FullPath:    dir,
		IsDirectory: true,
		Children:    make([]*models.FileNode, 0, len(entries)),
	}

	var files []*models.FileNode
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			child, err := w.listDir(full, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}
		files = append(files, &models.FileNode{Name: e.Name(), FullPath: full})
	}
	node.Children = append(node.Children, files...)

	return node, nil
}
