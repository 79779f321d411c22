package stride

import (
	"errors"
	"math"

	"github.com/akmonengine/stride/bucket"
	"github.com/akmonengine/stride/bvh"
	"github.com/akmonengine/stride/config"
	"github.com/akmonengine/stride/debugdraw"
	"github.com/akmonengine/stride/geometry"
	"github.com/akmonengine/stride/toi"
	"github.com/go-gl/mathgl/mgl64"
)

// minDisplacement is the length under which a displacement is not swept
const minDisplacement = 1e-6

// Player is a capsule moved through the level by its input, gravity and the contacts it meets.
// Velocities are expressed per reference frame, see config.TimingConfig.
type Player struct {
	// Id is free for the caller, it is only reported in logs
	Id       any
	Capsule  geometry.Capsule
	Velocity mgl64.Vec3
	// Yaw turns the input around the up axis, 0 faces +Z
	Yaw     float64
	OnFloor bool
	// Flags are the surfaces touched during the last tick
	Flags geometry.SurfaceFlags

	// Input is polled each tick, a nil Input keeps the horizontal velocity
	Input Input
	// Draw receives the contacts of each tick when set
	Draw debugdraw.Drawer

	movement        config.MovementConfig
	timing          config.TimingConfig
	backfaceEpsilon float64

	solver    *toi.Solver
	processor *bucket.Processor
	events    []Event
	err       error
}

// NewPlayer creates a player standing with its lower sphere centered on position.
// The tree is only read, it can be shared by all players.
func NewPlayer(tree *bvh.BVH, cfg config.Config, position mgl64.Vec3) *Player {
	settings := solverSettings(cfg.Sweep)

	return &Player{
		Capsule: geometry.Capsule{
			Center:     position,
			HalfHeight: cfg.Capsule.HalfHeight,
			Radius:     cfg.Capsule.Radius,
		},
		movement:        cfg.Movement,
		timing:          cfg.Timing,
		backfaceEpsilon: cfg.Sweep.BackfaceEpsilon,
		solver:          toi.NewSolver(tree, settings),
		processor:       bucket.NewProcessor(tree.Faces(), settings.MaxContacts),
		events:          make([]Event, 0, 8),
	}
}

func solverSettings(sweep config.SweepConfig) toi.Settings {
	return toi.Settings{
		Iterations:     sweep.Iterations,
		Epsilon:        sweep.Epsilon,
		Inflate:        sweep.Inflate,
		MaxLeaves:      sweep.MaxLeaves,
		MaxContacts:    sweep.MaxContacts,
		MaxTraceLeaves: sweep.MaxTraceLeaves,
	}
}

// Eye is the camera position, on top of the capsule
func (p *Player) Eye() mgl64.Vec3 {
	return p.Capsule.Top()
}

// Tick moves the player by dt seconds: vertical pass first, then the horizontal one.
// The returned error wraps toi.ErrOverflow when a scratch buffer was too small,
// the tick is completed with the contacts that fitted.
func (p *Player) Tick(dt float64) error {
	if dt <= 0 {
		return nil
	}
	ref := p.timing.ReferenceFrame
	scale := math.Min(dt, ref) / ref

	wasOnFloor := p.OnFloor
	p.Flags = geometry.SurfaceNone
	p.applyInput()

	err := errors.Join(p.vertical(scale), p.horizontal(scale))

	switch {
	case !wasOnFloor && p.OnFloor:
		p.emit(LandedEvent{Player: p})
	case wasOnFloor && !p.OnFloor:
		p.emit(LeftFloorEvent{Player: p})
	}
	if err != nil {
		p.emit(ContactOverflowEvent{Player: p, Err: err})
	}

	return err
}

// applyInput sets the horizontal velocity from the pressed controls
func (p *Player) applyInput() {
	if p.Input == nil {
		return
	}

	sin, cos := math.Sincos(p.Yaw)
	forward := mgl64.Vec3{sin, 0, cos}
	right := mgl64.Vec3{cos, 0, -sin}

	var wish mgl64.Vec3
	if p.Input.Pressed(ControlForward) {
		wish = wish.Add(forward)
	}
	if p.Input.Pressed(ControlBack) {
		wish = wish.Sub(forward)
	}
	if p.Input.Pressed(ControlRight) {
		wish = wish.Add(right)
	}
	if p.Input.Pressed(ControlLeft) {
		wish = wish.Sub(right)
	}
	if wish.Len() > minDisplacement {
		wish = wish.Normalize().Mul(p.movement.MoveSpeed)
	}

	p.Velocity[0] = wish.X()
	p.Velocity[2] = wish.Z()
}

// vertical jumps, snaps to the floor below or falls
func (p *Player) vertical(scale float64) error {
	if p.OnFloor && p.Input != nil && p.Input.Triggered(ControlJump) {
		p.Velocity[1] = p.movement.JumpSpeed
		p.OnFloor = false
		return nil
	}

	var err error
	if p.Velocity.Y() <= 0 {
		var hit toi.TraceHit
		var found bool

		// the lower sphere rests Radius/(n·up) above a plane, up to 2*Radius on the steepest floor
		from := p.Capsule.Center
		to := from.Sub(geometry.Up.Mul(p.Capsule.Radius/geometry.FloorCosine + p.movement.SnapDistance))
		hit, found, err = p.solver.Trace(from, to, geometry.SurfaceFloor)
		if found {
			rest := p.Capsule.Radius / hit.Normal.Dot(geometry.Up)
			if from.Y()-hit.Point.Y() <= rest+p.movement.SnapDistance {
				p.Capsule.Center[1] = hit.Point.Y() + rest
				p.Velocity[1] = 0
				p.OnFloor = true
				p.Flags |= geometry.SurfaceFloor
				return err
			}
		}
	}

	p.OnFloor = false
	p.Velocity[1] = math.Max(p.Velocity.Y()+p.movement.Gravity*scale, -p.movement.TerminalVelocity)

	return err
}

// horizontal sweeps the capsule along its velocity, sliding along what it hits,
// for up to timing.MaxSteps sweeps
func (p *Player) horizontal(scale float64) error {
	var errs []error
	remaining := p.Velocity.Mul(scale)
	resolution := p.solver.Resolution()

	for range p.timing.MaxSteps {
		if remaining.Len() < minDisplacement {
			break
		}

		result, err := p.solver.Sweep(p.Capsule, remaining)
		if err != nil {
			errs = append(errs, err)
		}

		hits := result.Hits
		sizes := p.processor.SortIntoBuckets(hits)
		hits, sizes = p.processor.ProcessBuckets(hits, sizes, remaining)
		hits, sizes = p.processor.TrimBackfacing(hits, sizes, remaining, p.backfaceEpsilon)
		if len(hits) == 0 {
			p.Capsule = p.Capsule.Translate(remaining)
			break
		}

		normal, flags := p.processor.AveragedNormal(hits, sizes, p.OnFloor)
		p.Flags |= flags
		p.drawContacts(hits, normal)

		t := result.Time
		p.Capsule = p.Capsule.Translate(remaining.Mul(math.Max(0, t-resolution)))

		walkable := flags.Has(geometry.SurfaceFloor) && normal.Dot(geometry.Up) > geometry.FloorCosine
		if walkable {
			p.OnFloor = true
		}

		if flags.Has(geometry.SurfaceWall) && p.OnFloor {
			stepped, err := p.stepUp(remaining)
			if err != nil {
				errs = append(errs, err)
			}
			if stepped {
				remaining = remaining.Mul(1 - t)
				continue
			}
		}

		remaining = remaining.Sub(normal.Mul(remaining.Dot(normal))).Mul(1 - t)

		if walkable {
			// walking on a slope keeps the horizontal speed
			p.Velocity[1] = math.Max(0, p.Velocity.Y())
		} else if into := p.Velocity.Dot(normal); into < 0 {
			p.Velocity = p.Velocity.Sub(normal.Mul(into))
		}

		if flags.Has(geometry.SurfaceWall) {
			p.emit(WallHitEvent{Player: p, Normal: normal})
		}
		if flags.Has(geometry.SurfaceCeiling) {
			p.emit(CeilingHitEvent{Player: p, Normal: normal})
		}
	}

	return errors.Join(errs...)
}

// stepUp lifts the player onto a ledge ahead, if it is no higher than movement.StepHeight
// and nothing blocks the way up
func (p *Player) stepUp(remaining mgl64.Vec3) (bool, error) {
	dir := mgl64.Vec3{remaining.X(), 0, remaining.Z()}
	if dir.Len() < minDisplacement {
		return false, nil
	}
	dir = dir.Normalize()

	feet := p.Capsule.Center.Y() - p.Capsule.Radius
	probe := p.Capsule.Center.Add(dir.Mul(p.Capsule.Radius + p.movement.StepReach))
	from := mgl64.Vec3{probe.X(), feet + p.movement.StepHeight, probe.Z()}
	to := mgl64.Vec3{probe.X(), feet, probe.Z()}

	hit, found, err := p.solver.Trace(from, to, geometry.SurfaceFloor)
	if !found {
		return false, err
	}
	rise := hit.Point.Y() - feet
	if rise <= 0 || rise > p.movement.StepHeight {
		return false, err
	}

	lift := geometry.Up.Mul(rise)
	result, sweepErr := p.solver.Sweep(p.Capsule, lift)
	if err = errors.Join(err, sweepErr); result.Blocked() {
		return false, err
	}

	if p.Draw != nil {
		p.Draw.Line(to, hit.Point, debugdraw.StepColor)
	}
	p.Capsule = p.Capsule.Translate(lift)
	p.emit(SteppedUpEvent{Player: p, Height: rise})

	return true, err
}

func (p *Player) drawContacts(hits []toi.Intersection, normal mgl64.Vec3) {
	if p.Draw == nil {
		return
	}

	faces := p.solver.Tree.Faces()
	for _, hit := range hits {
		if hit.Face != toi.NoFace {
			p.Draw.Face(faces[hit.Face], debugdraw.ContactColor)
		}
	}
	center := p.Capsule.Center
	p.Draw.Line(center, center.Add(normal.Mul(p.Capsule.Radius)), debugdraw.NormalColor)
}

func (p *Player) emit(event Event) {
	p.events = append(p.events, event)
}
