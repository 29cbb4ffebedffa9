package game

import (
	"tankarena/internal/game/spatial"
	"tankarena/internal/wire"
)

// viewportSide is the original's `112.5 * fov * 1.6` AABB side length
// (§4.4), sized so a Remote tank's FOV (a resolution-independent zoom
// factor) maps to a consistent world-space query box.
func viewportSide(fov uint8) float64 {
	return 112.5 * float64(fov) * 1.6
}

func (a *Arena) viewportBox(t *Tank) spatial.AABB {
	side := viewportSide(t.FOV)
	half := side / 2
	return spatial.AABB{
		X:      float64(t.Position.X) - half,
		Y:      float64(t.Position.Y) - half,
		Width:  side,
		Height: side,
	}
}

// censusAndBots runs the per-tank viewport pass: Remote tanks get an
// assembled Census packet every tick; Local (bot) tanks act on even ticks
// only (§4.4).
func (a *Arena) censusAndBots() {
	for _, t := range a.tanks {
		if t.State != TankAlive {
			continue
		}
		box := a.viewportBox(t)
		entries := a.index.Query(box)

		switch t.Type {
		case TankRemote:
			a.sendCensus(t, entries)
		case TankLocal:
			if a.ticks%2 == 0 {
				a.steerBot(t, entries)
			}
		}
	}
}

func (a *Arena) sendCensus(t *Tank, entries []spatial.Entry) {
	records := make([]wire.CensusRecord, 0, len(entries))
	for _, entry := range entries {
		if s, ok := a.shapes[entry.ID]; ok {
			records = append(records, wire.CensusRecord{Shape: &wire.ShapeRecord{
				ID:         s.ID,
				X:          int16(s.Position.X),
				Y:          int16(s.Position.Y),
				HealthFrac: s.Health / s.MaxHealth,
				Radius:     uint16(s.Radius),
			}})
			continue
		}
		if other, ok := a.tanks[entry.ID]; ok {
			if other.State != TankAlive {
				continue
			}
			chat := ""
			if other.chatVisible(a.ticks) {
				chat = other.Message.Content
			}
			records = append(records, wire.CensusRecord{Tank: &wire.TankRecord{
				ID:         other.ID,
				X:          int16(other.Position.X),
				Y:          int16(other.Position.Y),
				Rotation:   other.Rotation,
				VX:         int16(other.Velocity.X),
				VY:         int16(other.Velocity.Y),
				Mockup:     uint8(other.Mockup),
				HealthFrac: other.Health / other.MaxHealth,
				Radius:     uint16(other.Radius),
				Name:       other.Name,
				Chat:       chat,
			}})
			continue
		}
		if b, ok := a.bullets[entry.ID]; ok {
			records = append(records, wire.CensusRecord{Bullet: &wire.BulletRecordEntry{
				ID:     b.ID,
				X:      int16(b.Position.X),
				Y:      int16(b.Position.Y),
				Radius: uint16(b.Radius),
				VX:     int16(b.Velocity.X),
				VY:     int16(b.Velocity.Y),
				Owner:  b.Owner,
			}})
		}
	}

	frame := wire.EncodeCensus(records, uint16(a.size), t.Level)
	a.sendToClient(t, frame)
}
