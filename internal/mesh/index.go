package mesh

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// MeshesDir is the package subdirectory searched for misplaced meshes.
const MeshesDir = "meshes"

// suggestThreshold is the minimum name similarity for Suggest.
const suggestThreshold = 0.6

// Index lists every file under a package's meshes directory.
type Index struct {
	files []indexedFile
}

type indexedFile struct {
	path string
	name string // lowercase base name
}

// BuildIndex scans packageRoot/meshes recursively. Unreadable entries are
// skipped; a missing directory gives an empty index.
func BuildIndex(packageRoot string) *Index {
	idx := &Index{}
	root := filepath.Join(packageRoot, MeshesDir)

	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		idx.files = append(idx.files, indexedFile{path: p, name: strings.ToLower(d.Name())})
		return nil
	})

	return idx
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	return len(idx.files)
}

// Find looks up the file name of ref, ignoring case. Exact name matches are
// preferred; failing those, any file whose name contains ref's name
// matches. Among matches the shortest path wins, ties broken lexically.
func (idx *Index) Find(ref string) (string, bool) {
	base := refBase(ref)
	if base == "" {
		return "", false
	}

	var exact, partial []string
	for _, f := range idx.files {
		switch {
		case f.name == base:
			exact = append(exact, f.path)
		case strings.Contains(f.name, base):
			partial = append(partial, f.path)
		}
	}

	if len(exact) > 0 {
		return shortest(exact), true
	}
	if len(partial) > 0 {
		return shortest(partial), true
	}
	return "", false
}

// Suggest returns the indexed file whose name is most similar to ref's,
// or "" when nothing is close.
func (idx *Index) Suggest(ref string) string {
	base := refBase(ref)
	if base == "" {
		return ""
	}

	metric := metrics.NewLevenshtein()
	best, bestScore := "", suggestThreshold
	for _, f := range idx.files {
		score := strutil.Similarity(base, f.name, metric)
		if score > bestScore {
			best, bestScore = f.path, score
		}
	}
	return best
}

func shortest(paths []string) string {
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) < len(paths[j])
		}
		return paths[i] < paths[j]
	})
	return paths[0]
}
