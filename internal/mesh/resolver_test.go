package mesh

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urdf-visualizer/backend/internal/models"
	"github.com/urdf-visualizer/backend/internal/parser"
	"github.com/urdf-visualizer/backend/internal/testutil"
)

func TestLocalPath(t *testing.T) {
	root := filepath.FromSlash("/pkgs/arm")

	tests := []struct {
		name   string
		ref    string
		root   string
		want   string
		wantOK bool
	}{
		{"package", "package://arm/meshes/base.stl", root, filepath.Join(root, "meshes", "base.stl"), true},
		{"package name ignored", "package://other_pkg/meshes/base.stl", root, filepath.Join(root, "meshes", "base.stl"), true},
		{"backslashes", `package://arm\meshes\base.stl`, root, filepath.Join(root, "meshes", "base.stl"), true},
		{"no segment", "package://base.stl", root, filepath.Join(root, "base.stl"), true},
		{"package without root", "package://arm/meshes/base.stl", "", "", false},
		{"plain path", "/abs/base.stl", root, filepath.FromSlash("/abs/base.stl"), true},
		{"file scheme", "file:///abs/base.stl", root, filepath.FromSlash("/abs/base.stl"), true},
		{"empty", "", root, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LocalPath(tt.ref, tt.root)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Direct(t *testing.T) {
	root, _ := testutil.NewPackage(t, "two_link", testutil.TwoLinkURDF, "link_a.STL")

	got, ok := Resolve("package://two_link/meshes/link_a.STL", root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "meshes", "link_a.STL"), got)
}

func TestResolve_CaseInsensitiveFallbackPicksShortestPath(t *testing.T) {
	root, _ := testutil.NewPackage(t, "mypkg", testutil.SingleLinkURDF,
		"arm/base.STL",
		"arm/old/BASE.stl",
		"arx/base.STL",
	)

	got, ok := Resolve("package://mypkg/meshes/base.stl", root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "meshes", "arm", "base.STL"), got, "equal length paths tie-break lexically")
}

func TestResolve_SubstringFallback(t *testing.T) {
	root, _ := testutil.NewPackage(t, "mypkg", testutil.SingleLinkURDF,
		"visual/arm_base.stl",
		"v/old_base.stl.bak",
	)

	got, ok := Resolve("package://mypkg/meshes/BASE.stl", root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "meshes", "v", "old_base.stl.bak"), got)
}

func TestResolve_ExactBeatsSubstring(t *testing.T) {
	root, _ := testutil.NewPackage(t, "mypkg", testutil.SingleLinkURDF,
		"a_rather_long_directory/base.stl",
		"xbase.stl",
	)

	got, ok := Resolve("package://mypkg/meshes/base.stl", root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "meshes", "a_rather_long_directory", "base.stl"), got)
}

func TestResolve_NotFound(t *testing.T) {
	root, _ := testutil.NewPackage(t, "mypkg", testutil.SingleLinkURDF, "other.stl")

	got, ok := Resolve("package://mypkg/meshes/base.stl", root)
	assert.False(t, ok)
	assert.Empty(t, got)

	_, ok = Resolve("package://mypkg/meshes/base.stl", "")
	assert.False(t, ok)

	_, ok = Resolve("package://mypkg/meshes/base.stl", filepath.Join(t.TempDir(), "nope"))
	assert.False(t, ok)
}

func TestResolve_DirectoryIsNotAMesh(t *testing.T) {
	root, _ := testutil.NewPackage(t, "mypkg", testutil.SingleLinkURDF, "base.stl/inner.txt")

	_, ok := Resolve("package://mypkg/meshes/base.stl", root)
	assert.False(t, ok)
}

func TestResolveRobot(t *testing.T) {
	root, doc := testutil.NewPackage(t, "arm", testutil.ArmURDF,
		"base_link.STL",
		"SHOULDER.stl",
		"forarm.dae",
	)
	robot, err := parser.ParseFile(doc)
	require.NoError(t, err)

	refs := ResolveRobot(robot, root)
	require.Len(t, refs, 4)

	assert.Equal(t, models.MeshReference{
		Link:      "base_link",
		Kind:      models.MeshVisual,
		Reference: "package://arm/meshes/base_link.STL",
		Path:      filepath.Join(root, "meshes", "base_link.STL"),
		Status:    models.MeshResolved,
	}, refs[0])

	assert.Equal(t, models.MeshCollision, refs[1].Kind)
	assert.Equal(t, models.MeshUnresolved, refs[1].Status)
	assert.Empty(t, refs[1].Path)

	assert.Equal(t, "shoulder", refs[2].Link)
	assert.Equal(t, models.MeshResolved, refs[2].Status)
	assert.Equal(t, filepath.Join(root, "meshes", "SHOULDER.stl"), refs[2].Path)

	assert.Equal(t, "forearm", refs[3].Link)
	assert.Equal(t, models.MeshUnresolved, refs[3].Status)
	assert.Equal(t, filepath.Join(root, "meshes", "forarm.dae"), refs[3].Suggestion)
}

func TestResolveRobot_NoPackageRoot(t *testing.T) {
	robot, err := parser.ParseBytes([]byte(testutil.TwoLinkURDF))
	require.NoError(t, err)

	refs := ResolveRobot(robot, "")
	require.Len(t, refs, 1)
	assert.Equal(t, models.MeshUnresolved, refs[0].Status)
	assert.Empty(t, refs[0].Suggestion)
}

func TestIndex(t *testing.T) {
	root, _ := testutil.NewPackage(t, "mypkg", testutil.SingleLinkURDF, "a.stl", "sub/b.dae", "sub/deeper/c.obj")

	idx := BuildIndex(root)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "", idx.Suggest("package://mypkg/meshes/completely_unrelated_name.stl"))

	assert.Equal(t, 0, BuildIndex(t.TempDir()).Len())
}
