package main

import (
	"runtime"
	"time"

	"github.com/akmonengine/stride"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagPlayers int
	flagShards  int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Tick many players concurrently over the same level",
	Long: `Spawns --players players along the level spawn, each driven by the level
script, and splits them in --shards worlds ticked concurrently. All the worlds
share the same read-only BVH, each player owns its scratch buffers.

Examples:
  stride bench --players 64
  stride bench --level corridor --players 256 --shards 8 --ticks 1200`,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagPlayers, "players", 32, "Number of players")
	benchCmd.Flags().IntVar(&flagShards, "shards", runtime.NumCPU(), "Number of worlds ticked concurrently")
}

type shard struct {
	world     *stride.World
	inputs    []*stride.ScriptedInput
	elapsed   time.Duration
	overflows int
}

func runBench(cmd *cobra.Command, args []string) error {
	s, err := loadScene()
	if err != nil {
		return err
	}

	shards := make([]*shard, max(1, min(flagShards, flagPlayers)))
	for i := range shards {
		sh := &shard{world: &stride.World{Tree: s.world.Tree, Config: s.cfg, Logger: s.logger}}
		sh.world.Events.Subscribe(stride.CONTACT_OVERFLOW, func(event stride.Event) {
			sh.overflows++
		})
		shards[i] = sh
	}

	for i := range flagPlayers {
		input, err := stride.NewScriptedInput(s.layout.Script)
		if err != nil {
			return err
		}
		// players are spread apart so they do not all follow the same path
		spawn := s.layout.Spawn
		spawn[2] += float64(i%8-4) * 4

		sh := shards[i%len(shards)]
		player := sh.world.Spawn(spawn, s.layout.Yaw)
		player.Id = i
		player.Input = input
		sh.inputs = append(sh.inputs, input)
	}

	group, ctx := errgroup.WithContext(cmd.Context())
	dt := s.dt()
	start := time.Now()
	for _, sh := range shards {
		group.Go(func() error {
			begin := time.Now()
			for range flagTicks {
				if err := ctx.Err(); err != nil {
					return err
				}
				sh.world.Step(dt)
				for _, input := range sh.inputs {
					input.Advance()
				}
			}
			sh.elapsed = time.Since(begin)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	wall := time.Since(start)

	elapsed := lo.Map(shards, func(sh *shard, _ int) time.Duration { return sh.elapsed })
	players := lo.FlatMap(shards, func(sh *shard, _ int) []*stride.Player { return sh.world.Players })
	ticks := flagTicks * len(players)
	s.logger.Info("bench done",
		"players", len(players),
		"shards", len(shards),
		"ticks", ticks,
		"wall", wall,
		"per_tick", wall/time.Duration(max(1, ticks)),
		"slowest_shard", lo.Max(elapsed),
		"fastest_shard", lo.Min(elapsed),
		"cpu", lo.Sum(elapsed),
		"overflows", lo.SumBy(shards, func(sh *shard) int { return sh.overflows }),
		"on_floor", lo.CountBy(players, func(p *stride.Player) bool { return p.OnFloor }),
	)
	return nil
}
