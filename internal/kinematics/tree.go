// Package kinematics derives the link tree of a robot and resolves the world
// transform of every link for the current joint values.
package kinematics

import "github.com/urdf-visualizer/backend/internal/models"

// Tree is the parent/child structure derived from a robot's joint list.
// It refers to links and joints by name only.
type Tree struct {
	// Children maps a parent link to the names of the joints leaving it,
	// in declaration order.
	Children map[string][]string `json:"children"`
	// Roots lists links that are never a joint's child, in declaration
	// order. When every link is a child the first link is used.
	Roots []string `json:"roots"`
}

// BuildTree derives the tree of robot. Cycles are not detected here.
func BuildTree(robot *models.Robot) *Tree {
	tree := &Tree{Children: make(map[string][]string)}

	isChild := make(map[string]bool, len(robot.Joints))
	for _, j := range robot.Joints {
		if j.Parent != "" {
			tree.Children[j.Parent] = append(tree.Children[j.Parent], j.Name)
		}
		if j.Child != "" {
			isChild[j.Child] = true
		}
	}

	for _, l := range robot.Links {
		if !isChild[l.Name] {
			tree.Roots = append(tree.Roots, l.Name)
		}
	}
	if len(tree.Roots) == 0 && len(robot.Links) > 0 {
		tree.Roots = []string{robot.Links[0].Name}
	}

	return tree
}

// Nodes expands the tree into nested nodes starting from each root. A link
// reached twice is listed once; the second edge is dropped so cyclic
// documents still produce a finite tree.
func (t *Tree) Nodes(robot *models.Robot) []*models.TreeNode {
	joints := make(map[string]*models.Joint, len(robot.Joints))
	for i := range robot.Joints {
		joints[robot.Joints[i].Name] = &robot.Joints[i]
	}

	seen := make(map[string]bool)
	var expand func(link string, via *models.Joint) *models.TreeNode
	expand = func(link string, via *models.Joint) *models.TreeNode {
		seen[link] = true
		node := &models.TreeNode{Link: link}
		if via != nil {
			node.Joint = via.Name
			node.JointType = via.Type.String()
		}
		for _, name := range t.Children[link] {
			j := joints[name]
			if j == nil || seen[j.Child] {
				continue
			}
			node.Children = append(node.Children, expand(j.Child, j))
		}
		return node
	}

	nodes := make([]*models.TreeNode, 0, len(t.Roots))
	for _, root := range t.Roots {
		if seen[root] {
			continue
		}
		nodes = append(nodes, expand(root, nil))
	}
	return nodes
}
