package game

import (
	"time"

	"tankarena/internal/tankconfig"
)

// Client is the minimal surface Tank needs from a bound connection. Real
// WebSocket framing lives in internal/protocol; keeping this as a narrow
// interface here avoids internal/game depending on the transport package.
type Client interface {
	Send(data []byte) error
	Close(code int, reason string) error
}

// TankType distinguishes human-bound tanks from bot-controlled ones.
type TankType uint8

const (
	TankLocal TankType = iota
	TankRemote
)

// TankState is Alive or Dead. Local (bot) tanks never enter Dead: on death
// they reposition and heal in place (§4.6).
type TankState uint8

const (
	TankAlive TankState = iota
	TankDead
)

// Input is the latest parsed movement/aim state for a tank (§3).
type Input struct {
	W, A, S, D bool
	MouseDown  bool
	MousePos   Vector2
}

// ChatMessage is the tank's most recent chat line and the tick it arrived,
// used to age it out of Census after 150 ticks (§6.2).
type ChatMessage struct {
	Content string
	Tick    uint64
}

const (
	tankMovementSpeed = 4
	tankFriction      = 0.8
	tankMass          = 1
	tankMaxHealth     = 500
	healthRegenFrac   = 0.0013
	chatMaxAge        = 150
	minTankRadius     = 50
	radiusPerLevel    = 0.25
	maxRadiusLevel    = 100
)

// Tank is a player- or bot-controlled entity with barrels, level, and the
// Alive/Dead lifecycle (§3).
type Tank struct {
	Entity

	Name    string
	Input   Input
	Barrels []*Barrel
	Mockup  int
	FOV     uint8
	Level   float32
	Message ChatMessage

	Type  TankType
	State TankState

	Client    Client
	SpawnTime time.Time
}

// NewTank constructs a tank at position. client == nil means a Local (bot)
// tank; otherwise the tank is Remote and bound to client.
func NewTank(id uint32, name string, position Vector2, client Client) *Tank {
	typ := TankRemote
	if client == nil {
		typ = TankLocal
	}
	return &Tank{
		Entity: Entity{
			ID:        id,
			Position:  position,
			Radius:    minTankRadius,
			MaxHealth: tankMaxHealth,
			Health:    tankMaxHealth,
			Mass:      tankMass,
			Friction:  tankFriction,
		},
		Name:      name,
		Level:     1,
		Type:      typ,
		State:     TankAlive,
		Client:    client,
		SpawnTime: time.Now(),
	}
}

// Define rebuilds this tank's barrel list and viewport parameters from a
// tank config (mockup), matching core.hpp's Tank::define.
func (t *Tank) Define(mockup int, cfg tankconfig.TankConfig) {
	t.Mockup = mockup
	t.FOV = cfg.FOV
	t.Barrels = make([]*Barrel, len(cfg.Barrels))
	for i, b := range cfg.Barrels {
		t.Barrels[i] = newBarrel(b)
	}
}

// radiusForLevel implements `radius = 50 + min(level,100)*0.25`.
func radiusForLevel(level float32) float32 {
	capped := level
	if capped > maxRadiusLevel {
		capped = maxRadiusLevel
	}
	return minTankRadius + capped*radiusPerLevel
}

// applyInput accelerates the tank along world axes per its held movement
// bits (§3/§4.3); aim (mouse position/rotation) is independent of movement.
func (t *Tank) applyInput() {
	var dx, dy float32
	if t.Input.W {
		dy--
	}
	if t.Input.S {
		dy++
	}
	if t.Input.A {
		dx--
	}
	if t.Input.D {
		dx++
	}
	t.Velocity.X += dx * tankMovementSpeed
	t.Velocity.Y += dy * tankMovementSpeed
}

// regenerateHealth applies the per-tick passive regen (§3/§4.6), capped at
// max health.
func (t *Tank) regenerateHealth() {
	if t.Health == t.MaxHealth {
		return
	}
	t.Health += t.MaxHealth * healthRegenFrac
	if t.Health > t.MaxHealth {
		t.Health = t.MaxHealth
	}
}

// chatVisible reports whether the tank's last chat message is recent enough
// to include in Census (age in ticks <= 150).
func (t *Tank) chatVisible(now uint64) bool {
	if t.Message.Content == "" {
		return false
	}
	return now-t.Message.Tick <= chatMaxAge
}

// halveLevel implements the reference's "halve level, floor 1" rule applied
// both to Local in-place respawns and Remote Respawn packets.
func halveLevel(level float32) float32 {
	h := level / 2
	if h < 1 {
		return 1
	}
	return h
}
