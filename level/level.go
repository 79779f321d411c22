// Package level describes test levels in YAML and turns them into the mesh
// buffers the BVH is built from.
package level

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akmonengine/stride/bvh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed levels/*.yaml
var builtins embed.FS

var ErrUnknownLevel = errors.New("level: unknown level")

// Box is an axis aligned solid
type Box struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

// Quad is a single sided quad, counter-clockwise seen from its front
type Quad struct {
	Points [4]mgl64.Vec3 `yaml:"points"`
}

// Ramp is a wedge rising along +X
type Ramp struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

// Stairs are steps climbing along +X
type Stairs struct {
	Min   mgl64.Vec3 `yaml:"min"`
	Width float64    `yaml:"width"`
	Count int        `yaml:"count"`
	Rise  float64    `yaml:"rise"`
	Run   float64    `yaml:"run"`
}

// ScriptStep holds controls down for the ticks [From, To)
type ScriptStep struct {
	From     int      `yaml:"from"`
	To       int      `yaml:"to"`
	Controls []string `yaml:"controls"`
}

// Layout is a level description
type Layout struct {
	Name   string       `yaml:"name"`
	Spawn  mgl64.Vec3   `yaml:"spawn"`
	Yaw    float64      `yaml:"yaw"`
	Boxes  []Box        `yaml:"boxes"`
	Quads  []Quad       `yaml:"quads"`
	Ramps  []Ramp       `yaml:"ramps"`
	Stairs []Stairs     `yaml:"stairs"`
	Script []ScriptStep `yaml:"script"`
}

// Parse decodes and validates a layout
func Parse(data []byte) (Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("failed to parse level: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Load reads a layout from a file, or from the builtin levels when nameOrPath has no extension
func Load(nameOrPath string) (Layout, error) {
	if filepath.Ext(nameOrPath) == "" {
		return Builtin(nameOrPath)
	}

	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read level %s: %w", nameOrPath, err)
	}
	layout, err := Parse(data)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", nameOrPath, err)
	}
	return layout, nil
}

// Builtin returns one of the levels shipped with the package
func Builtin(name string) (Layout, error) {
	data, err := builtins.ReadFile("levels/" + name + ".yaml")
	if err != nil {
		return Layout{}, fmt.Errorf("%w %q, builtin levels are %s", ErrUnknownLevel, name, strings.Join(BuiltinNames(), ", "))
	}
	return Parse(data)
}

// BuiltinNames lists the levels shipped with the package
func BuiltinNames() []string {
	entries, _ := builtins.ReadDir("levels")
	return lo.Map(entries, func(entry os.DirEntry, _ int) string {
		return strings.TrimSuffix(entry.Name(), ".yaml")
	})
}

// Validate rejects inverted volumes and empty levels
func (l Layout) Validate() error {
	var errs []error

	for i, box := range l.Boxes {
		if !below(box.Min, box.Max) {
			errs = append(errs, fmt.Errorf("box %d: min %v must be below max %v", i, box.Min, box.Max))
		}
	}
	for i, ramp := range l.Ramps {
		if !below(ramp.Min, ramp.Max) {
			errs = append(errs, fmt.Errorf("ramp %d: min %v must be below max %v", i, ramp.Min, ramp.Max))
		}
	}
	for i, stairs := range l.Stairs {
		if stairs.Count <= 0 || stairs.Rise <= 0 || stairs.Run <= 0 || stairs.Width <= 0 {
			errs = append(errs, fmt.Errorf("stairs %d: count, rise, run and width must be positive", i))
		}
	}
	for i, step := range l.Script {
		if step.To < step.From {
			errs = append(errs, fmt.Errorf("script step %d: to %d is before from %d", i, step.To, step.From))
		}
	}
	if len(l.Boxes)+len(l.Quads)+len(l.Ramps)+len(l.Stairs) == 0 {
		errs = append(errs, errors.New("level has no geometry"))
	}

	return errors.Join(errs...)
}

func below(min, max mgl64.Vec3) bool {
	return min.X() < max.X() && min.Y() < max.Y() && min.Z() < max.Z()
}

// Meshes returns the mesh buffers of every element of the layout
func (l Layout) Meshes() []bvh.Mesh {
	meshes := lo.Map(l.Boxes, func(box Box, _ int) bvh.Mesh { return BoxMesh(box.Min, box.Max) })
	meshes = append(meshes, lo.Map(l.Quads, func(quad Quad, _ int) bvh.Mesh {
		return QuadMesh(quad.Points[0], quad.Points[1], quad.Points[2], quad.Points[3])
	})...)
	meshes = append(meshes, lo.Map(l.Ramps, func(ramp Ramp, _ int) bvh.Mesh { return RampMesh(ramp.Min, ramp.Max) })...)
	meshes = append(meshes, lo.Flatten(lo.Map(l.Stairs, func(stairs Stairs, _ int) []bvh.Mesh {
		return StairsMesh(stairs.Min, stairs.Width, stairs.Count, stairs.Rise, stairs.Run)
	}))...)

	return meshes
}
