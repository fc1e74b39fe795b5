package mesh

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urdf-visualizer/backend/internal/testutil"
)

func TestListTree(t *testing.T) {
	root, _ := testutil.NewPackage(t, "arm", testutil.ArmURDF, "b.stl", "a.stl", "visual/c.dae")
	testutil.WriteFile(t, root, "package.xml", "<package/>")

	tree, err := ListTree(root)
	require.NoError(t, err)

	assert.Equal(t, "arm", tree.Name)
	assert.True(t, tree.IsDirectory)

	var names []string
	for _, c := range tree.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"meshes", "urdf", "package.xml"}, names, "directories first")

	meshes := tree.Children[0]
	require.Len(t, meshes.Children, 3)
	assert.Equal(t, "visual", meshes.Children[0].Name)
	assert.Equal(t, "a.stl", meshes.Children[1].Name)
	assert.Equal(t, filepath.Join(root, "meshes", "b.stl"), meshes.Children[2].FullPath)
	assert.False(t, meshes.Children[2].IsDirectory)
}

func TestListTree_Errors(t *testing.T) {
	_, err := ListTree(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := testutil.WriteFile(t, t.TempDir(), "x.urdf", "")
	_, err = ListTree(file)
	assert.Error(t, err)
}

func withTreeCaps(t *testing.T, depth, entries int) {
	t.Helper()
	prevDepth, prevEntries := maxTreeDepth, maxTreeEntries
	maxTreeDepth, maxTreeEntries = depth, entries
	t.Cleanup(func() { maxTreeDepth, maxTreeEntries = prevDepth, prevEntries })
}

func TestListTree_DepthCap(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "a/b/c/d.stl", "")
	withTreeCaps(t, 3, 100)

	tree, err := ListTree(root)
	require.NoError(t, err, "a/b/c sits at depth 3")
	assert.Equal(t, "a", tree.Children[0].Name)

	testutil.WriteFile(t, root, "a/b/c/e/f.stl", "")
	_, err = ListTree(root)
	assert.ErrorIs(t, err, ErrTreeTooLarge)
}

func TestListTree_EntryCap(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"meshes/a.stl", "meshes/b.stl", "urdf/r.urdf"} {
		testutil.WriteFile(t, root, name, "")
	}
	withTreeCaps(t, 16, 5)

	_, err := ListTree(root)
	require.NoError(t, err, "two directories and three files")

	testutil.WriteFile(t, root, "meshes/c.stl", "")
	_, err = ListTree(root)
	assert.ErrorIs(t, err, ErrTreeTooLarge)
}
