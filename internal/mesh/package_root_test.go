package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urdf-visualizer/backend/internal/testutil"
)

func TestLocatePackageRoot(t *testing.T) {
	root, doc := testutil.NewPackage(t, "arm", testutil.ArmURDF)

	got, err := LocatePackageRoot(doc)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestLocatePackageRoot_NestedDocument(t *testing.T) {
	root, _ := testutil.NewPackage(t, "arm", testutil.ArmURDF)
	doc := testutil.WriteFile(t, root, "urdf/variants/left/arm_left.urdf", testutil.ArmURDF)

	got, err := LocatePackageRoot(doc)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestLocatePackageRoot_ClosestAncestorWins(t *testing.T) {
	outer, _ := testutil.NewPackage(t, "outer", testutil.SingleLinkURDF)
	inner := filepath.Join(outer, "vendor", "gripper")
	require.NoError(t, os.MkdirAll(filepath.Join(inner, "meshes"), 0755))
	doc := testutil.WriteFile(t, inner, "urdf/gripper.urdf", testutil.SingleLinkURDF)

	got, err := LocatePackageRoot(doc)
	require.NoError(t, err)
	assert.Equal(t, inner, got)
}

func TestLocatePackageRoot_RequiresBothDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg", "urdf"), 0755))
	doc := testutil.WriteFile(t, dir, "pkg/urdf/robot.urdf", testutil.SingleLinkURDF)

	_, err := LocatePackageRoot(doc)
	assert.ErrorIs(t, err, ErrPackageRootNotFound)
}

func TestExpandPath(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	got, err := ExpandPath("~/robots/arm.urdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, home), got)
	assert.True(t, filepath.IsAbs(got))

	got, err = ExpandPath("relative/arm.urdf")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
