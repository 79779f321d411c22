// stride runs the capsule controller over a level, headless.
//
// Usage:
//
//	stride simulate          - Run a level script and log the player state
//	stride render            - Run a level script and draw its trajectory to a PNG
//	stride bench             - Tick many players concurrently over the same level
//	stride levels            - List the builtin levels
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.stride/configs, ./configs, then embedded)
//	--level <name|path> - Builtin level name or YAML layout path (default: stairs)
//	--log-level <level> - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"os"

	"github.com/akmonengine/stride"
	"github.com/akmonengine/stride/config"
	"github.com/akmonengine/stride/level"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagLevel    string
	flagLogLevel string
	flagTicks    int
	flagFPS      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Stride - capsule collision over triangle levels",
	Long: `Stride moves capsule players through static triangle levels,
sweeping them against the level and sliding or stepping up on contact.

Available commands:
  simulate - Run a level script and log the player state
  render   - Draw the trajectory of a level script to a PNG
  bench    - Tick many players concurrently
  levels   - List the builtin levels

Examples:
  stride simulate --level corridor --ticks 300
  stride render --level stairs --out stairs.png
  stride bench --players 64 --ticks 600`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "level", "stairs", "Builtin level name or path to a level YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&flagTicks, "ticks", 600, "Number of ticks to run")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(levelsCmd)
}

// scene is what every command needs to run a level
type scene struct {
	logger *log.Logger
	cfg    config.Config
	layout level.Layout
	world  *stride.World
}

func newLogger() (*log.Logger, error) {
	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	}), nil
}

func loadScene() (*scene, error) {
	if flagFPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", flagFPS)
	}

	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	layout, err := level.Load(flagLevel)
	if err != nil {
		return nil, err
	}
	logger.Info("level loaded", "name", layout.Name, "boxes", len(layout.Boxes), "quads", len(layout.Quads),
		"ramps", len(layout.Ramps), "stairs", len(layout.Stairs))

	world, err := stride.NewWorld(cfg, layout.Meshes(), logger)
	if err != nil {
		return nil, err
	}

	return &scene{logger: logger, cfg: cfg, layout: layout, world: world}, nil
}

// spawn adds a player driven by the level script
func (s *scene) spawn() (*stride.Player, *stride.ScriptedInput, error) {
	input, err := stride.NewScriptedInput(s.layout.Script)
	if err != nil {
		return nil, nil, err
	}

	player := s.world.Spawn(s.layout.Spawn, s.layout.Yaw)
	player.Input = input

	return player, input, nil
}

func (s *scene) dt() float64 {
	return 1 / float64(flagFPS)
}
