package stride

import "github.com/go-gl/mathgl/mgl64"

const (
	LANDED EventType = iota
	LEFT_FLOOR
	WALL_HIT
	CEILING_HIT
	STEPPED_UP
	CONTACT_OVERFLOW
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Floor events
type LandedEvent struct {
	Player *Player
}

func (e LandedEvent) Type() EventType { return LANDED }

type LeftFloorEvent struct {
	Player *Player
}

func (e LeftFloorEvent) Type() EventType { return LEFT_FLOOR }

// Contact events, Normal is the averaged normal of the contact
type WallHitEvent struct {
	Player *Player
	Normal mgl64.Vec3
}

func (e WallHitEvent) Type() EventType { return WALL_HIT }

type CeilingHitEvent struct {
	Player *Player
	Normal mgl64.Vec3
}

func (e CeilingHitEvent) Type() EventType { return CEILING_HIT }

type SteppedUpEvent struct {
	Player *Player
	Height float64
}

func (e SteppedUpEvent) Type() EventType { return STEPPED_UP }

// ContactOverflowEvent is sent when a scratch buffer was too small during the tick.
// The tick still completed with the contacts that fitted.
type ContactOverflowEvent struct {
	Player *Player
	Err    error
}

func (e ContactOverflowEvent) Type() EventType { return CONTACT_OVERFLOW }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// collect moves the events a player queued during its tick into the buffer.
// Players queue their own events so they can tick concurrently.
func (e *Events) collect(player *Player) {
	e.buffer = append(e.buffer, player.events...)
	clear(player.events)
	player.events = player.events[:0]
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	clear(e.buffer)
	e.buffer = e.buffer[:0]
}
