package game

import "testing"

func TestCanDamageMatrix(t *testing.T) {
	cases := []struct {
		receiver, attacker Kind
		want               bool
	}{
		{KindShape, KindBullet, true},
		{KindShape, KindTank, false},
		{KindShape, KindShape, false},
		{KindTank, KindBullet, true},
		{KindTank, KindShape, true},
		{KindTank, KindTank, false},
		{KindBullet, KindBullet, true},
		{KindBullet, KindShape, true},
		{KindBullet, KindTank, false},
	}
	for _, c := range cases {
		if got := canDamage(c.receiver, c.attacker); got != c.want {
			t.Errorf("canDamage(%v, %v) = %v, want %v", c.receiver, c.attacker, got, c.want)
		}
	}
}

func TestExcludedBulletNeverCollidesWithOwner(t *testing.T) {
	a := newTestArena(t)
	tank := a.Join("Owner", &fakeClient{})
	bullet := NewBullet(a.idAlloc.Next(), tank.Position, tank.ID)
	a.spawnBullet(bullet)

	if !a.excluded(KindBullet, bullet.ID, KindTank, tank.ID) {
		t.Fatal("expected bullet to be excluded from colliding with its own owner")
	}
}

func TestExcludedSameOwnerBulletsDoNotCollide(t *testing.T) {
	a := newTestArena(t)
	tank := a.Join("Owner", &fakeClient{})
	b1 := NewBullet(a.idAlloc.Next(), tank.Position, tank.ID)
	b2 := NewBullet(a.idAlloc.Next(), tank.Position, tank.ID)
	a.spawnBullet(b1)
	a.spawnBullet(b2)

	if !a.excluded(KindBullet, b1.ID, KindBullet, b2.ID) {
		t.Fatal("expected two bullets from the same owner to be excluded")
	}
}

func TestExcludedTankVsTankAlwaysTrue(t *testing.T) {
	a := newTestArena(t)
	t1 := a.Join("A", &fakeClient{})
	t2 := a.Join("B", &fakeClient{})

	if !a.excluded(KindTank, t1.ID, KindTank, t2.ID) {
		t.Fatal("expected tank-vs-tank to always be excluded")
	}
}

func TestExcludedDeadTankIsSkipped(t *testing.T) {
	a := newTestArena(t)
	tank := a.Join("Victim", &fakeClient{})
	tank.State = TankDead
	owner := a.Join("Shooter", &fakeClient{})
	bullet := NewBullet(a.idAlloc.Next(), owner.Position, owner.ID)
	a.spawnBullet(bullet)

	if !a.excluded(KindBullet, bullet.ID, KindTank, tank.ID) {
		t.Fatal("expected a dead tank to be excluded from collision")
	}
}

func TestApplyDamageCreditsShapeKillToBulletOwner(t *testing.T) {
	a := newTestArena(t)
	owner := a.Join("Shooter", &fakeClient{})
	owner.Level = 1

	shape := a.spawnShape()
	shape.Health = 1

	bullet := NewBullet(a.idAlloc.Next(), shape.Position, owner.ID)
	bullet.Damage = 10
	a.spawnBullet(bullet)

	a.applyDamage(KindShape, shape.ID, KindBullet, bullet.ID)

	if shape.Health > 0 {
		t.Fatal("expected shape to die from lethal damage")
	}
	if owner.Level != 1+shapeReward {
		t.Fatalf("expected owner credited shape reward %v, got level %v", shapeReward, owner.Level)
	}
}

func TestApplyDamageCreditsTankKillHalfLevel(t *testing.T) {
	a := newTestArena(t)
	owner := a.Join("Shooter", &fakeClient{})
	owner.Level = 1
	victim := a.Join("Victim", &fakeClient{})
	victim.Level = 8
	victim.Health = 1

	bullet := NewBullet(a.idAlloc.Next(), victim.Position, owner.ID)
	bullet.Damage = 10
	a.spawnBullet(bullet)

	a.applyDamage(KindTank, victim.ID, KindBullet, bullet.ID)

	if victim.Health > 0 {
		t.Fatal("expected victim tank to die from lethal damage")
	}
	if owner.Level != 5 {
		t.Fatalf("expected owner credited half of victim's level (4), got level %v", owner.Level)
	}
}

func TestApplyKnockbackPushesAwayFromAttacker(t *testing.T) {
	e := &Entity{Position: Vector2{X: 0, Y: 0}}
	attacker := Vector2{X: 10, Y: 0}

	e.applyKnockback(attacker)

	if e.Velocity.X >= 0 {
		t.Fatalf("expected knockback to push self away from attacker (negative X), got velocity %+v", e.Velocity)
	}
}

func TestShapeTakesNoDamageFromTank(t *testing.T) {
	a := newTestArena(t)
	shape := a.spawnShape()
	tank := a.Join("Bystander", &fakeClient{})

	if canDamage(KindShape, KindTank) {
		t.Fatal("shapes must never take damage from tanks")
	}
	_ = shape
	_ = tank
}
