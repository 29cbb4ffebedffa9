package game

import (
	"fmt"
	"sync/atomic"

	"tankarena/internal/game/spatial"
)

// Kind tags which variant an entity id belongs to. Entities are a tagged
// variant, not subtype inheritance: shared fields live in Entity, per-kind
// fields live on Shape/Tank/Bullet, and each kind is stored in its own map
// on Arena so downcast lookups are O(1) without a type switch on every read.
type Kind uint8

const (
	KindShape Kind = iota
	KindTank
	KindBullet
)

// CollisionStrength is the knockback impulse multiplier applied on overlap.
const CollisionStrength = 5

// Entity holds the fields every arena-owned object carries regardless of
// kind: position/motion state, health, and the physical parameters used by
// motion integration and collision.
type Entity struct {
	ID       uint32
	Position Vector2
	Velocity Vector2
	Rotation float32
	Radius   float32
	MaxHealth float32
	Health    float32
	Damage    float32
	Mass      float32
	Friction  float32
}

// Alive reports whether the entity's health has not yet crossed zero.
func (e *Entity) Alive() bool {
	return e.Health > 0
}

// BoundingBox returns the AABB centered on Position with side 2*Radius,
// matching the broadphase record contract (x,y = position-radius, w=h=2r).
func (e *Entity) BoundingBox() spatial.AABB {
	d := float64(e.Radius) * 2
	return spatial.AABB{
		X:      float64(e.Position.X) - float64(e.Radius),
		Y:      float64(e.Position.Y) - float64(e.Radius),
		Width:  d,
		Height: d,
	}
}

// integrateMotion applies friction, advances position by velocity*delta/mass
// and clamps to the arena bounds, zeroing velocity on the clamped axis. This
// is the one piece of physics every kind shares (§4.3).
func (e *Entity) integrateMotion(delta float32, size float32) {
	e.Velocity = e.Velocity.Scale(e.Friction)

	mass := e.Mass
	if mass == 0 {
		mass = 1
	}
	e.Position = e.Position.Add(e.Velocity.Scale(delta / mass))

	if e.Position.X < 0 {
		e.Position.X = 0
		e.Velocity.X = 0
	} else if e.Position.X > size {
		e.Position.X = size
		e.Velocity.X = 0
	}
	if e.Position.Y < 0 {
		e.Position.Y = 0
		e.Velocity.Y = 0
	} else if e.Position.Y > size {
		e.Position.Y = size
		e.Velocity.Y = 0
	}
}

// applyKnockback pushes the entity away from attacker's center by the
// collision impulse (§4.4: velocity += away_heading * COLLISION_STRENGTH,
// where away_heading is the unit heading from attacker to self).
func (e *Entity) applyKnockback(attacker Vector2) {
	d := e.Position.DistanceTo(attacker)
	if d == 0 {
		return
	}
	heading := Vector2{
		X: (e.Position.X - attacker.X) / d,
		Y: (e.Position.Y - attacker.Y) / d,
	}
	e.Velocity = e.Velocity.Add(heading.Scale(CollisionStrength))
}

func circleOverlap(a Vector2, ar float32, b Vector2, br float32) bool {
	return a.DistanceTo(b) < ar+br
}

// IDAllocator is the process-wide globally unique 32-bit entity id source,
// shared by every arena (spec.md §9: replace the reference's mutable global
// counter with a single owned allocator threaded through construction).
type IDAllocator struct {
	next atomic.Uint32
}

// NewIDAllocator returns an allocator starting at 1 (0 is never issued, so it
// can double as an unset/invalid sentinel in owner fields).
func NewIDAllocator() *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(1)
	return a
}

const idExhaustionWarnThreshold = ^uint32(0) - 10000

// Next returns the next globally unique id. Logs a warning once the counter
// approaches wraparound; wraparound itself is an invariant violation the
// caller must treat as fatal (spec.md §3).
func (a *IDAllocator) Next() uint32 {
	id := a.next.Add(1) - 1
	if id >= idExhaustionWarnThreshold {
		Warn(fmt.Sprintf("entity id allocator nearing exhaustion: %d", id))
	}
	return id
}
