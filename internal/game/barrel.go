package game

import "tankarena/internal/tankconfig"

// BarrelTarget is the firing state machine's current phase.
type BarrelTarget uint8

const (
	TargetNone BarrelTarget = iota
	TargetReloadDelay
	TargetCoolingDown
)

// barrelTimer tracks when the current phase should transition, in ticks.
type barrelTimer struct {
	target BarrelTarget
	time   float64
}

// Barrel is a tank-owned firing mount: its static config plus the firing
// state machine's runtime fields (§3, §4.5).
type Barrel struct {
	tankconfig.BarrelConfig
	CoolingDown bool
	timer       barrelTimer
	fullReload  float64 // full_reload - reload_delay, the reference's adjusted timer base
	reload      float64
}

// newBarrel builds a runtime Barrel from its config, matching core.hpp's
// Tank::define: full_reload is adjusted down by reload_delay, reload starts
// at the (unadjusted) full_reload.
func newBarrel(cfg tankconfig.BarrelConfig) *Barrel {
	return &Barrel{
		BarrelConfig: cfg,
		fullReload:   float64(cfg.FullReload) - float64(cfg.ReloadDelay),
		reload:       float64(cfg.FullReload),
		timer:        barrelTimer{target: TargetNone},
	}
}

// step advances this barrel's firing state machine by one tick (§4.5).
// avgDelta scales reload/cooldown timers the same way the reference does
// (now + reload_delay/avg_delta).
func (b *Barrel) step(tank *Tank, a *Arena, now uint64, avgDelta float64) {
	if avgDelta <= 0 {
		avgDelta = 1
	}

	if tank.Input.MouseDown && !b.CoolingDown {
		b.CoolingDown = true
		b.timer = barrelTimer{
			target: TargetReloadDelay,
			time:   float64(now) + float64(b.ReloadDelay)/avgDelta,
		}
	}

	if b.timer.target == TargetNone || float64(now) < b.timer.time {
		return
	}

	switch b.timer.target {
	case TargetReloadDelay:
		b.fire(tank, a)
		b.CoolingDown = true
		b.timer = barrelTimer{
			target: TargetCoolingDown,
			time:   float64(now) + b.fullReload/avgDelta,
		}
	case TargetCoolingDown:
		b.CoolingDown = false
		b.timer = barrelTimer{target: TargetNone}
	}
}

// defaultBulletRadius is the bullet's radius at construction, before
// Barrel.fire overwrites it with barrel.Width*tank.Radius. core.hpp computes
// the spawn-position offset using this default value before the reassignment
// happens, a quirk preserved here rather than "corrected" (see DESIGN.md).
const defaultBulletRadius = 25

// fire spawns a bullet from this barrel and applies recoil to tank (§4.5).
func (b *Barrel) fire(tank *Tank, a *Arena) {
	angle := tank.Rotation + b.Angle
	dir := Unit(angle)

	offset := tank.Radius + defaultBulletRadius + 1
	position := tank.Position.Add(dir.Scale(offset))

	id := a.idAlloc.Next()
	bullet := NewBullet(id, position, tank.ID)
	bullet.Velocity = dir.Scale(b.BulletSpeed)
	bullet.Radius = b.Width * tank.Radius
	bullet.Damage = b.BulletDamage
	bullet.MaxHealth = b.BulletPenetration
	bullet.Health = bullet.MaxHealth

	a.spawnBullet(bullet)

	delta := float32(a.delta)
	if delta == 0 {
		delta = 1
	}
	tank.Velocity = tank.Velocity.Sub(dir.Scale(b.Recoil / delta))
}
