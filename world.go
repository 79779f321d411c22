// Package stride moves capsule players through a static triangle level.
//
// Each tick, a player falls or snaps to the floor below, then sweeps its capsule
// along its velocity and slides along, or steps up, what it hits. A displacement
// is only tested against the faces the capsule overlaps at its end, so the
// distance covered in one tick must stay below the capsule size.
package stride

import (
	"fmt"
	"io"

	"github.com/akmonengine/stride/bvh"
	"github.com/akmonengine/stride/config"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

type World struct {
	// Tree is the level, read concurrently by all players
	Tree    *bvh.BVH
	Config  config.Config
	Players []*Player
	Workers int
	Logger  *log.Logger

	Events Events
}

// NewWorld builds the level from meshes. A nil logger discards the logs.
func NewWorld(cfg config.Config, meshes []bvh.Mesh, logger *log.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tree, err := bvh.Build(meshes)
	if err != nil {
		return nil, fmt.Errorf("failed to build level: %w", err)
	}

	if logger == nil {
		logger = log.New(io.Discard)
	}
	stats := tree.Stats()
	logger.Debug("level built",
		"faces", stats.Faces,
		"invalid", stats.InvalidFaces,
		"nodes", stats.Nodes,
		"leaves", stats.Leaves,
		"depth", stats.MaxDepth,
		"largest_leaf", stats.LargestLeaf,
	)
	if stats.InvalidFaces > 0 {
		logger.Warn("degenerate triangles ignored", "count", stats.InvalidFaces)
	}

	return &World{
		Tree:    tree,
		Config:  cfg,
		Workers: cfg.World.Workers,
		Logger:  logger,
		Events:  NewEvents(),
	}, nil
}

// Spawn adds a new player at position, facing yaw
func (w *World) Spawn(position mgl64.Vec3, yaw float64) *Player {
	player := NewPlayer(w.Tree, w.Config, position)
	player.Yaw = yaw
	w.AddPlayer(player)

	return player
}

// AddPlayer adds a player to the world
func (w *World) AddPlayer(player *Player) {
	w.Players = append(w.Players, player)
}

// RemovePlayer removes a player from the world, its pending events are dropped
func (w *World) RemovePlayer(player *Player) {
	k := -1
	for i, p := range w.Players {
		if p == player {
			k = i
			break
		}
	}

	if k != -1 {
		w.Players = append(w.Players[:k], w.Players[k+1:]...)
		player.events = player.events[:0]
	}
}

// Step ticks every player by dt seconds, then sends the events they raised
func (w *World) Step(dt float64) {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)

	task(w.Workers, w.Players, func(player *Player) {
		player.err = player.Tick(dt)
	})

	for _, player := range w.Players {
		if player.err != nil {
			w.logger().Warn("contact overflow", "player", player.Id, "err", player.err)
			player.err = nil
		}
		w.Events.collect(player)
	}
	w.Events.flush()
}

func (w *World) logger() *log.Logger {
	if w.Logger == nil {
		w.Logger = log.New(io.Discard)
	}
	return w.Logger
}
