// Package tankconfig loads and hot-reloads the tank mockup registry
// (entityconfig.json): the process-wide mapping from mockup index to tank
// definition. The file format itself is out of scope (spec.md §1); this
// package is the registry that holds the parsed result, watches the file,
// and serves readers.
package tankconfig

// BarrelConfig is the static, config-file-sourced definition of a barrel.
// All nine fields from spec.md §3/§6.4 are carried, even though the
// corpus's kept entityconfig.hpp sample omits the last two - core.hpp's
// Tank::define clearly reads barrel.bullet_damage and
// barrel.bullet_penetration, so a faithful config must provide them.
type BarrelConfig struct {
	Angle             float32 `json:"angle"`
	Width             float32 `json:"width"`
	Length            float32 `json:"length"`
	FullReload        uint32  `json:"full_reload"`
	ReloadDelay       uint32  `json:"reload_delay"`
	Recoil            float32 `json:"recoil"`
	BulletSpeed       float32 `json:"bullet_speed"`
	BulletDamage      float32 `json:"bullet_damage"`
	BulletPenetration float32 `json:"bullet_penetration"`
}

// TankConfig is one mockup: name, field of view, and barrel layout.
type TankConfig struct {
	Name    string         `json:"name"`
	FOV     uint8          `json:"fov"`
	Barrels []BarrelConfig `json:"barrels"`
}
