package main

import (
	"fmt"
	"image/color"

	"github.com/akmonengine/stride"
	"github.com/akmonengine/stride/bvh"
	"github.com/akmonengine/stride/config"
	"github.com/akmonengine/stride/geometry"
	"github.com/akmonengine/stride/level"
	"github.com/go-gl/mathgl/mgl64"
)

// PrintDrawer prints the debug draw requests of the player
type PrintDrawer struct{}

func (d *PrintDrawer) Face(face geometry.Face, c color.RGBA) {
	fmt.Printf("   contact face: normal=%v surface=%v\n", face.Normal, face.Surface)
}

func (d *PrintDrawer) Line(from, to mgl64.Vec3, c color.RGBA) {
	fmt.Printf("   line: %v -> %v\n", from, to)
}

// SetupScene creates a floor with a flight of 4 steps, and a player walking towards them
func SetupScene() (*stride.World, *stride.Player) {
	meshes := []bvh.Mesh{
		level.BoxMesh(mgl64.Vec3{-200, -20, -200}, mgl64.Vec3{600, 0, 200}),
	}
	meshes = append(meshes, level.StairsMesh(mgl64.Vec3{64, 0, -60}, 120, 4, 12, 48)...)

	world, err := stride.NewWorld(config.DefaultConfig(), meshes, nil)
	if err != nil {
		panic(err)
	}

	player := world.Spawn(mgl64.Vec3{0, 12, 0}, 0)
	player.Velocity = mgl64.Vec3{3, 0, 0}
	player.Draw = &PrintDrawer{}

	world.Events.Subscribe(stride.STEPPED_UP, func(event stride.Event) {
		fmt.Printf("   stepped up by %.2f\n", event.(stride.SteppedUpEvent).Height)
	})
	world.Events.Subscribe(stride.LEFT_FLOOR, func(event stride.Event) {
		fmt.Println("   left the floor")
	})
	world.Events.Subscribe(stride.LANDED, func(event stride.Event) {
		fmt.Println("   landed")
	})

	return world, player
}

func main() {
	world, player := SetupScene()

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 120

	for step := 0; step < maxSteps; step++ {
		fmt.Printf("--- STEP %d ---\n", step+1)
		world.Step(dt)

		fmt.Printf("  Position: %v\n", player.Capsule.Center)
		fmt.Printf("  Eye: %v\n", player.Eye())
		fmt.Printf("  Velocity: %v\n", player.Velocity)
		fmt.Printf("  On floor: %v, flags: %v\n", player.OnFloor, player.Flags)
	}
}
