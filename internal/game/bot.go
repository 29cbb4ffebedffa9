package game

import (
	"math"

	"tankarena/internal/game/spatial"
)

const (
	// botAccuracyThreshold is the dead zone (world units) below which a bot
	// stops steering along an axis (§4.4).
	botAccuracyThreshold = 30
	// botEngagementPad is added to the bot's own radius to form its
	// stop-closing range: once within radius+this of the target, the bot
	// holds distance and just fires.
	botEngagementPad = 400
)

// steerBot runs one Local tank's AI pass: pick the nearest visible target
// (tanks preferred over shapes), aim at it, and close distance until within
// engagement range. Runs every other tick (§4.4).
func (a *Arena) steerBot(t *Tank, entries []spatial.Entry) {
	t.Input.W, t.Input.A, t.Input.S, t.Input.D = false, false, false, false
	t.Input.MouseDown = true

	target, found := a.nearestBotTarget(t, entries)
	if !found {
		return
	}
	t.Input.MousePos = target
	t.Rotation = t.Position.AngleTo(target)

	if t.Position.DistanceTo(target) <= botEngagementPad+t.Radius {
		return
	}

	dx := target.X - t.Position.X
	dy := target.Y - t.Position.Y
	if dx > botAccuracyThreshold {
		t.Input.D = true
	} else if dx < -botAccuracyThreshold {
		t.Input.A = true
	}
	if dy > botAccuracyThreshold {
		t.Input.S = true
	} else if dy < -botAccuracyThreshold {
		t.Input.W = true
	}
}

func (a *Arena) nearestBotTarget(t *Tank, entries []spatial.Entry) (Vector2, bool) {
	bestTankDist := float32(math.MaxFloat32)
	bestShapeDist := float32(math.MaxFloat32)
	var bestTank, bestShape Vector2
	foundTank, foundShape := false, false

	for _, e := range entries {
		if e.ID == t.ID {
			continue
		}
		if other, ok := a.tanks[e.ID]; ok {
			if other.State != TankAlive {
				continue
			}
			if d := t.Position.DistanceTo(other.Position); d < bestTankDist {
				bestTankDist, bestTank, foundTank = d, other.Position, true
			}
			continue
		}
		if s, ok := a.shapes[e.ID]; ok {
			if d := t.Position.DistanceTo(s.Position); d < bestShapeDist {
				bestShapeDist, bestShape, foundShape = d, s.Position, true
			}
		}
	}

	if foundTank {
		return bestTank, true
	}
	if foundShape {
		return bestShape, true
	}
	return Vector2{}, false
}
