package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TwoLinkURDF is a base link and one revolute link lifted 1 unit on Z.
const TwoLinkURDF = `<?xml version="1.0"?>
<robot name="two_link">
  <link name="base_link"/>
  <link name="link_a">
    <visual>
      <geometry><mesh filename="package://two_link/meshes/link_a.STL"/></geometry>
    </visual>
  </link>
  <joint name="joint_a" type="revolute">
    <origin xyz="0 0 1" rpy="0 0 0"/>
    <parent link="base_link"/>
    <child link="link_a"/>
    <axis xyz="0 0 1"/>
    <limit lower="-1.57" upper="1.57" effort="10" velocity="1"/>
  </joint>
</robot>`

// ArmURDF is a small serial arm with fixed, revolute, continuous and
// prismatic joints, materials and mesh references.
const ArmURDF = `<?xml version="1.0"?>
<robot name="arm">
  <material name="grey">
    <color rgba="0.5 0.5 0.5 1"/>
  </material>
  <link name="base_link">
    <inertial>
      <origin xyz="0 0 0.05"/>
      <mass value="2.5"/>
      <inertia ixx="0.01" ixy="0" ixz="0" iyy="0.01" iyz="0" izz="0.02"/>
    </inertial>
    <visual>
      <origin xyz="0 0 0" rpy="0 0 0"/>
      <geometry><mesh filename="package://arm/meshes/base_link.STL"/></geometry>
      <material name="grey"/>
    </visual>
    <collision>
      <geometry><mesh filename="package://arm/meshes/base_link_collision.stl"/></geometry>
    </collision>
  </link>
  <link name="mount"/>
  <link name="shoulder">
    <visual>
      <geometry><mesh filename="package://arm/meshes/shoulder.STL" scale="1 1 1"/></geometry>
      <material name="red"><color rgba="1 0 0 1"/></material>
    </visual>
  </link>
  <link name="forearm">
    <visual>
      <geometry><mesh filename="package://arm/meshes/forearm.dae"/></geometry>
    </visual>
  </link>
  <link name="slider"/>
  <joint name="mount_joint" type="fixed">
    <origin xyz="0 0 0.1"/>
    <parent link="base_link"/>
    <child link="mount"/>
  </joint>
  <joint name="shoulder_joint" type="revolute">
    <origin xyz="0 0 0.2" rpy="0 0 0"/>
    <parent link="mount"/>
    <child link="shoulder"/>
    <axis xyz="0 0 1"/>
    <limit lower="-3.14" upper="3.14" effort="50" velocity="2"/>
  </joint>
  <joint name="elbow_joint" type="continuous">
    <origin xyz="0.5 0 0"/>
    <parent link="shoulder"/>
    <child link="forearm"/>
    <axis xyz="0 1 0"/>
  </joint>
  <joint name="slide_joint" type="prismatic">
    <origin xyz="0.3 0 0"/>
    <parent link="forearm"/>
    <child link="slider"/>
    <axis xyz="1 0 0"/>
    <limit lower="0" upper="0.2" effort="5" velocity="0.1"/>
  </joint>
</robot>`

// SingleLinkURDF has one link and no joints.
const SingleLinkURDF = `<robot name="solo"><link name="only"/></robot>`

// WriteFile writes content under dir, creating parent directories.
func WriteFile(t testing.TB, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// NewPackage lays out a description package: <root>/urdf/<name>.urdf plus
// the given mesh files under <root>/meshes. It returns the root and the
// document path.
func NewPackage(t testing.TB, name, urdf string, meshes ...string) (root, doc string) {
	t.Helper()
	root = filepath.Join(t.TempDir(), name)
	doc = WriteFile(t, root, "urdf/"+name+".urdf", urdf)
	if err := os.MkdirAll(filepath.Join(root, "meshes"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, m := range meshes {
		WriteFile(t, root, "meshes/"+m, "solid mesh\nendsolid mesh\n")
	}
	return root, doc
}
