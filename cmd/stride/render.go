package main

import (
	"github.com/akmonengine/stride/debugdraw"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"
)

var (
	flagOut        string
	flagWidth      int
	flagPrimitives int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Draw the trajectory of a level script to a PNG",
	Long: `Runs the script of a level and renders, top-down, the level faces,
the path of the player and the contacts recorded along the way.

Examples:
  stride render --level stairs --out stairs.png
  stride render --level corridor --width 1600 --ticks 300`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&flagOut, "out", "trace.png", "Output PNG path")
	renderCmd.Flags().IntVar(&flagWidth, "width", 1024, "Image width in pixels")
	renderCmd.Flags().IntVar(&flagPrimitives, "primitives", 4096, "Maximum number of debug primitives kept")
}

func runRender(cmd *cobra.Command, args []string) error {
	s, err := loadScene()
	if err != nil {
		return err
	}

	player, input, err := s.spawn()
	if err != nil {
		return err
	}
	recorder := debugdraw.NewRecorder(flagPrimitives)
	player.Draw = recorder

	trail := make([]mgl64.Vec3, 0, flagTicks+1)
	trail = append(trail, player.Capsule.Center)
	for range flagTicks {
		s.world.Step(s.dt())
		input.Advance()
		trail = append(trail, player.Capsule.Center)
	}

	if dropped := recorder.Dropped(); dropped > 0 {
		s.logger.Warn("debug primitives dropped", "count", dropped, "capacity", flagPrimitives)
	}

	view := debugdraw.NewView(s.world.Tree.Bounds(), flagWidth)
	img := debugdraw.Render(view, s.world.Tree.Faces(), recorder.Primitives(), trail)
	if err := debugdraw.SavePNG(flagOut, img); err != nil {
		return err
	}

	s.logger.Info("trajectory rendered", "out", flagOut, "width", view.Width, "height", view.Height)
	return nil
}
