package game

import "tankarena/internal/game/spatial"

// collisionPass resolves overlaps for one tick (spec.md §4.4). Every
// unordered pair is visited exactly once by only processing a candidate
// whose id is greater than the querying entity's id - Grid.Query is
// symmetric, so whichever of the pair is visited first sees the other as a
// candidate either way.
func (a *Arena) collisionPass() {
	for id := range a.shapes {
		a.collideOne(id, KindShape)
	}
	for id, t := range a.tanks {
		if t.State == TankDead {
			continue
		}
		a.collideOne(id, KindTank)
	}
	for id := range a.bullets {
		a.collideOne(id, KindBullet)
	}
}

func (a *Arena) collideOne(selfID uint32, selfKind Kind) {
	pos, radius, ok := a.entityGeometry(selfID)
	if !ok {
		return
	}
	box := spatial.AABB{
		X:      float64(pos.X) - float64(radius),
		Y:      float64(pos.Y) - float64(radius),
		Width:  float64(radius) * 2,
		Height: float64(radius) * 2,
	}
	for _, entry := range a.index.Query(box) {
		if entry.ID <= selfID {
			continue
		}
		otherKind, ok := a.kindOf(entry.ID)
		if !ok {
			continue
		}
		if a.excluded(selfKind, selfID, otherKind, entry.ID) {
			continue
		}
		otherPos, otherRadius, ok := a.entityGeometry(entry.ID)
		if !ok {
			continue
		}
		if !circleOverlap(pos, radius, otherPos, otherRadius) {
			continue
		}
		a.resolveCollision(selfKind, selfID, otherKind, entry.ID)
	}
}

func (a *Arena) kindOf(id uint32) (Kind, bool) {
	if _, ok := a.shapes[id]; ok {
		return KindShape, true
	}
	if _, ok := a.tanks[id]; ok {
		return KindTank, true
	}
	if _, ok := a.bullets[id]; ok {
		return KindBullet, true
	}
	return 0, false
}

func (a *Arena) entityPtr(kind Kind, id uint32) *Entity {
	switch kind {
	case KindShape:
		if s, ok := a.shapes[id]; ok {
			return &s.Entity
		}
	case KindTank:
		if t, ok := a.tanks[id]; ok {
			return &t.Entity
		}
	case KindBullet:
		if b, ok := a.bullets[id]; ok {
			return &b.Entity
		}
	}
	return nil
}

// excluded implements spec.md §4.4's exclusion table: a bullet never
// collides with its own owner (in either direction), two bullets from the
// same owner never collide, and anything touching a Dead tank is skipped.
// Tank-vs-tank has no effect in the original at all.
func (a *Arena) excluded(kindA Kind, idA uint32, kindB Kind, idB uint32) bool {
	if idA == idB {
		return true
	}
	if kindA == KindTank && kindB == KindTank {
		return true
	}
	if t, ok := a.tanks[idA]; kindA == KindTank && ok && t.State == TankDead {
		return true
	}
	if t, ok := a.tanks[idB]; kindB == KindTank && ok && t.State == TankDead {
		return true
	}
	if kindA == KindBullet && kindB == KindTank {
		if bl, ok := a.bullets[idA]; ok && bl.Owner == idB {
			return true
		}
	}
	if kindB == KindBullet && kindA == KindTank {
		if bl, ok := a.bullets[idB]; ok && bl.Owner == idA {
			return true
		}
	}
	if kindA == KindBullet && kindB == KindBullet {
		ba, oka := a.bullets[idA]
		bb, okb := a.bullets[idB]
		if oka && okb && ba.Owner == bb.Owner {
			return true
		}
	}
	return false
}

// canDamage reports whether receiverKind takes damage from attackerKind,
// independent of knockback (spec.md §4.4):
//   - Shape takes damage only from Bullet.
//   - Tank takes damage from Bullet or Shape.
//   - Bullet takes damage from Bullet or Shape, never from Tank.
func canDamage(receiverKind, attackerKind Kind) bool {
	switch receiverKind {
	case KindShape:
		return attackerKind == KindBullet
	case KindTank:
		return attackerKind == KindBullet || attackerKind == KindShape
	case KindBullet:
		return attackerKind == KindBullet || attackerKind == KindShape
	}
	return false
}

// resolveCollision applies knockback unconditionally to both sides of a
// non-excluded overlapping pair, then applies damage in whichever
// direction(s) canDamage allows.
func (a *Arena) resolveCollision(kindA Kind, idA uint32, kindB Kind, idB uint32) {
	posA, _, _ := a.entityGeometry(idA)
	posB, _, _ := a.entityGeometry(idB)

	if ea := a.entityPtr(kindA, idA); ea != nil {
		ea.applyKnockback(posB)
	}
	if eb := a.entityPtr(kindB, idB); eb != nil {
		eb.applyKnockback(posA)
	}

	a.applyDamage(kindA, idA, kindB, idB)
	a.applyDamage(kindB, idB, kindA, idA)
}

func (a *Arena) applyDamage(receiverKind Kind, receiverID uint32, attackerKind Kind, attackerID uint32) {
	if !canDamage(receiverKind, attackerKind) {
		return
	}
	receiver := a.entityPtr(receiverKind, receiverID)
	attacker := a.entityPtr(attackerKind, attackerID)
	if receiver == nil || attacker == nil {
		return
	}
	wasAlive := receiver.Health > 0
	receiver.Health -= attacker.Damage
	if wasAlive && receiver.Health <= 0 {
		a.handleKill(receiverKind, receiverID, attackerKind, attackerID)
	}
}

// handleKill credits kill value to a bullet's owner tank (spec.md §4.4):
// a shape kill pays the shape's Reward, a tank kill pays half the victim's
// level. Only bullets grant kill credit.
func (a *Arena) handleKill(receiverKind Kind, receiverID uint32, attackerKind Kind, attackerID uint32) {
	if attackerKind != KindBullet {
		return
	}
	bullet, ok := a.bullets[attackerID]
	if !ok {
		return
	}
	switch receiverKind {
	case KindShape:
		if shape, ok := a.shapes[receiverID]; ok {
			a.creditKill(bullet.Owner, shape.Reward)
		}
	case KindTank:
		if victim, ok := a.tanks[receiverID]; ok {
			a.creditKill(bullet.Owner, victim.Level/2)
		}
	}
}
