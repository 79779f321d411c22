package main

import (
	"github.com/akmonengine/stride"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a level script and log the player state",
	Long: `Runs the script of a level for --ticks ticks with a single player.

Contact events are logged at info level, the state of each tick at debug level.

Examples:
  stride simulate --level flat
  stride simulate --level corridor --ticks 300 --log-level debug`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := loadScene()
	if err != nil {
		return err
	}

	player, input, err := s.spawn()
	if err != nil {
		return err
	}
	player.Id = "player"

	logEvents(s)

	for tick := range flagTicks {
		s.world.Step(s.dt())
		input.Advance()

		s.logger.Debug("tick",
			"n", tick,
			"center", player.Capsule.Center,
			"velocity", player.Velocity,
			"on_floor", player.OnFloor,
			"flags", player.Flags,
		)
	}

	s.logger.Info("simulation done",
		"ticks", flagTicks,
		"center", player.Capsule.Center,
		"eye", player.Eye(),
		"on_floor", player.OnFloor,
	)
	return nil
}

// logEvents logs the contact events of every player
func logEvents(s *scene) {
	events := &s.world.Events

	events.Subscribe(stride.LANDED, func(event stride.Event) {
		e := event.(stride.LandedEvent)
		s.logger.Info("landed", "player", e.Player.Id, "center", e.Player.Capsule.Center)
	})
	events.Subscribe(stride.LEFT_FLOOR, func(event stride.Event) {
		e := event.(stride.LeftFloorEvent)
		s.logger.Info("left floor", "player", e.Player.Id, "center", e.Player.Capsule.Center)
	})
	events.Subscribe(stride.WALL_HIT, func(event stride.Event) {
		e := event.(stride.WallHitEvent)
		s.logger.Debug("wall hit", "player", e.Player.Id, "normal", e.Normal)
	})
	events.Subscribe(stride.CEILING_HIT, func(event stride.Event) {
		e := event.(stride.CeilingHitEvent)
		s.logger.Info("ceiling hit", "player", e.Player.Id, "normal", e.Normal)
	})
	events.Subscribe(stride.STEPPED_UP, func(event stride.Event) {
		e := event.(stride.SteppedUpEvent)
		s.logger.Info("stepped up", "player", e.Player.Id, "height", e.Height)
	})
}
