package game

const (
	bulletFriction   = 1
	bulletMass       = 1
	bulletLifetime   = 50
	bulletDefaultMax = 10
)

// Bullet is a short-lived projectile fired by a tank's barrel. Radius,
// damage and max health are overwritten by Barrel.fire immediately after
// construction; the zero-value defaults here only matter for the brief
// window fire() uses the default radius to compute the spawn offset
// (see Barrel.fire / DESIGN.md).
type Bullet struct {
	Entity
	Owner    uint32
	Lifetime float32
}

// NewBullet constructs a bullet owned by ownerID at position, with the
// reference's defaults prior to the firing barrel overwriting them.
func NewBullet(id uint32, position Vector2, ownerID uint32) *Bullet {
	return &Bullet{
		Entity: Entity{
			ID:        id,
			Position:  position,
			Radius:    defaultBulletRadius,
			MaxHealth: bulletDefaultMax,
			Health:    bulletDefaultMax,
			Damage:    20,
			Mass:      bulletMass,
			Friction:  bulletFriction,
		},
		Owner:    ownerID,
		Lifetime: bulletLifetime,
	}
}

// Expired reports whether the bullet's lifetime has run out (§3/§4.6).
func (b *Bullet) Expired() bool {
	return b.Lifetime <= 0 || b.Health <= 0
}
