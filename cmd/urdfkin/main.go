// urdfkin loads a URDF robot description, applies joint values and prints
// the world transform of every link.
//
// Usage:
//
//	urdfkin [flags] <robot.urdf>
//
// Joint values come from an optional YAML preset (--preset) followed by any
// number of --joint name=value overrides. With --meshes every mesh reference
// is resolved against the robot's package directory. --save-preset writes the
// final joint values back out as a preset.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/urdf-visualizer/backend/internal/models"
	"github.com/urdf-visualizer/backend/internal/parser"
	"github.com/urdf-visualizer/backend/internal/session"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	base        string
	joints      []string
	preset      string
	savePreset  string
	packageRoot string
	meshes      bool
	tree        bool
	clamp       bool
	format      string
	verbose     bool
}

// report is the machine-readable output of one run.
type report struct {
	Robot      string                 `json:"robot" yaml:"robot"`
	BaseLink   string                 `json:"baseLink" yaml:"base_link"`
	Stats      models.RobotStats      `json:"stats" yaml:"stats"`
	Joints     map[string]float64     `json:"joints" yaml:"joints"`
	Tree       []*models.TreeNode     `json:"tree,omitempty" yaml:"tree,omitempty"`
	Transforms []models.LinkTransform `json:"transforms" yaml:"transforms"`
	Missing    []string               `json:"missing,omitempty" yaml:"missing,omitempty"`
	Meshes     []models.MeshReference `json:"meshes,omitempty" yaml:"meshes,omitempty"`

	summary string
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("urdfkin", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.base, "base", "", "base link (default: base_link when declared, else the first root)")
	flagSet.StringArrayVarP(&opts.joints, "joint", "j", nil, "joint value as name=value (repeatable)")
	flagSet.StringVar(&opts.preset, "preset", "", "YAML joint preset applied before --joint values")
	flagSet.StringVar(&opts.savePreset, "save-preset", "", "write the resulting joint values to a YAML preset")
	flagSet.StringVar(&opts.packageRoot, "package-root", "", "package directory for package:// mesh references")
	flagSet.BoolVar(&opts.meshes, "meshes", false, "resolve mesh references")
	flagSet.BoolVar(&opts.tree, "tree", false, "print the kinematic tree")
	flagSet.BoolVar(&opts.clamp, "clamp", true, "clamp revolute and prismatic values to their limits")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "output format: text, yaml or json")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: urdfkin [flags] <robot.urdf>\n\nFlags:\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected one robot description, got %d arguments", flagSet.NArg())
	}
	switch opts.format {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	values, err := parseJointFlags(opts.joints)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rep, err := solve(context.Background(), flagSet.Arg(0), opts, values, logger)
	if err != nil {
		return err
	}
	if opts.savePreset != "" {
		if err := savePreset(opts.savePreset, rep); err != nil {
			return err
		}
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rep)
	default:
		return writeText(stdout, rep)
	}
}

// parseJointFlags turns name=value pairs into a value map. A later pair
// overrides an earlier one for the same joint.
func parseJointFlags(pairs []string) (map[string]float64, error) {
	values := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("--joint %q: expected name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("--joint %q: %w", pair, err)
		}
		values[name] = v
	}
	return values, nil
}

// solve runs one document through a throwaway session so the command line
// shares base link selection, clamping and mesh lookup with the server.
func solve(ctx context.Context, path string, opts options, values map[string]float64, logger *slog.Logger) (*report, error) {
	sopts := session.DefaultOptions()
	sopts.Watch = false
	sopts.ClampToLimits = opts.clamp
	sopts.MaxSessions = 1

	mgr := session.NewManager(nil, nil, sopts, logger)
	defer mgr.Shutdown(ctx)

	sess, err := mgr.Open(ctx, session.OpenRequest{
		Path:        path,
		PackageRoot: opts.packageRoot,
		BaseLink:    opts.base,
	})
	if err != nil {
		return nil, err
	}
	id := sess.ID

	if opts.preset != "" {
		preset, err := parser.ParsePresetFile(opts.preset)
		if err != nil {
			return nil, err
		}
		if _, err := mgr.ApplyPreset(ctx, id, preset); err != nil {
			return nil, fmt.Errorf("preset %s: %w", opts.preset, err)
		}
	}
	if len(values) > 0 {
		if _, err := mgr.SetJointValues(ctx, id, values); err != nil {
			return nil, err
		}
	}

	snap, err := mgr.Transforms(id)
	if err != nil {
		return nil, err
	}
	robot, err := mgr.Robot(id)
	if err != nil {
		return nil, err
	}

	rep := &report{
		Robot:      robot.Name,
		BaseLink:   snap.BaseLink,
		Stats:      robot.Stats(),
		Joints:     snap.JointValues,
		Transforms: snap.Transforms,
		Missing:    snap.Missing,
		summary:    robot.String(),
	}
	if opts.tree {
		view, err := mgr.Tree(id)
		if err != nil {
			return nil, err
		}
		rep.Tree = view.Nodes
	}
	if opts.meshes {
		if rep.Meshes, err = mgr.Meshes(id); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// savePreset stores the solved pose so a later run can replay it with --preset.
func savePreset(path string, rep *report) error {
	data, err := parser.MarshalPreset(&models.JointPreset{
		Name:     rep.Robot,
		BaseLink: rep.BaseLink,
		Joints:   rep.Joints,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}

func writeText(w io.Writer, rep *report) error {
	fmt.Fprint(w, rep.summary)
	fmt.Fprintf(w, "\nBase link: %s\n", rep.BaseLink)

	if len(rep.Tree) > 0 {
		fmt.Fprintln(w, "\nTree:")
		for _, n := range rep.Tree {
			writeNode(w, n, 1)
		}
	}

	fmt.Fprintln(w, "\nTransforms:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  LINK\tX\tY\tZ")
	for _, lt := range rep.Transforms {
		fmt.Fprintf(tw, "  %s\t%.6f\t%.6f\t%.6f\n", lt.Link, lt.Position[0], lt.Position[1], lt.Position[2])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(rep.Missing) > 0 {
		fmt.Fprintf(w, "Unreachable from %s: %s\n", rep.BaseLink, strings.Join(rep.Missing, ", "))
	}

	if len(rep.Meshes) > 0 {
		fmt.Fprintln(w, "\nMeshes:")
		for _, m := range rep.Meshes {
			switch {
			case m.Status == models.MeshResolved:
				fmt.Fprintf(w, "  %-10s %s -> %s\n", m.Link, m.Reference, m.Path)
			case m.Suggestion != "":
				fmt.Fprintf(w, "  %-10s %s (unresolved, did you mean %s?)\n", m.Link, m.Reference, m.Suggestion)
			default:
				fmt.Fprintf(w, "  %-10s %s (unresolved)\n", m.Link, m.Reference)
			}
		}
	}
	return nil
}

func writeNode(w io.Writer, n *models.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Joint == "" {
		fmt.Fprintf(w, "%s%s\n", indent, n.Link)
	} else {
		fmt.Fprintf(w, "%s%s [%s %s]\n", indent, n.Link, n.JointType, n.Joint)
	}
	for _, c := range n.Children {
		writeNode(w, c, depth+1)
	}
}
