package main

// Event type names as sent to controllers
const (
	EvtBulletMissed      = "bullet_missed"
	EvtBulletHit         = "bullet_hit"
	EvtHitByBullet       = "hit_by_bullet"
	EvtBulletHitBullet   = "bullet_hit_bullet"
	EvtBulletHitMissile  = "bullet_hit_missile"
	EvtMissileMissed     = "missile_missed"
	EvtMissileHit        = "missile_hit"
	EvtHitByMissile      = "hit_by_missile"
	EvtMissileHitBullet  = "missile_hit_bullet"
	EvtMissileHitMissile = "missile_hit_missile"
	EvtDeath             = "death"
	EvtShipDeath         = "ship_death"
)

// Event is delivered to a ship's event queue
type Event interface {
	EventType() string
}

// ProjectileInfo is an immutable copy of a projectile's public fields taken
// when an event is raised. Names are already masked for the recipient.
type ProjectileInfo struct {
	ID      int     `json:"id" msgpack:"id"`
	Kind    Kind    `json:"k" msgpack:"k"`
	Owner   string  `json:"o" msgpack:"o"`
	Victim  string  `json:"v,omitempty" msgpack:"v,omitempty"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Heading float64 `json:"h" msgpack:"h"`
	Power   float64 `json:"p" msgpack:"p"`
	Active  bool    `json:"a" msgpack:"a"`
}

// Equal compares by identity. Ids are scoped to the owner and kind.
func (pi ProjectileInfo) Equal(o ProjectileInfo) bool {
	return pi.ID == o.ID && pi.Kind == o.Kind && pi.Owner == o.Owner
}

// ProjectileStatus is reported to the owner every turn for each live projectile
type ProjectileStatus struct {
	ID     int     `json:"id"`
	Kind   Kind    `json:"k"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Victim string  `json:"v,omitempty"`
	Active bool    `json:"a"`
}

type BulletMissedEvent struct {
	Bullet ProjectileInfo `json:"b"`
}

type BulletHitEvent struct {
	Name   string         `json:"name"`
	Energy float64        `json:"energy"`
	Bullet ProjectileInfo `json:"b"`
}

type HitByBulletEvent struct {
	Bearing float64        `json:"bearing"`
	Bullet  ProjectileInfo `json:"b"`
}

type BulletHitBulletEvent struct {
	Bullet    ProjectileInfo `json:"b"`
	HitBullet ProjectileInfo `json:"hb"`
}

type BulletHitMissileEvent struct {
	Bullet     ProjectileInfo `json:"b"`
	HitMissile ProjectileInfo `json:"hm"`
}

type MissileMissedEvent struct {
	Missile ProjectileInfo `json:"m"`
}

type MissileHitEvent struct {
	Name    string         `json:"name"`
	Energy  float64        `json:"energy"`
	Missile ProjectileInfo `json:"m"`
}

type HitByMissileEvent struct {
	Bearing float64        `json:"bearing"`
	Missile ProjectileInfo `json:"m"`
}

type MissileHitBulletEvent struct {
	Missile   ProjectileInfo `json:"m"`
	HitBullet ProjectileInfo `json:"hb"`
}

type MissileHitMissileEvent struct {
	Missile    ProjectileInfo `json:"m"`
	HitMissile ProjectileInfo `json:"hm"`
}

// DeathEvent tells a ship it has been destroyed
type DeathEvent struct {
	Turn int `json:"turn"`
}

// ShipDeathEvent tells the survivors another ship has been destroyed
type ShipDeathEvent struct {
	Name string `json:"name"`
}

func (BulletMissedEvent) EventType() string { return EvtBulletMissed }
func (BulletHitEvent) EventType() string { return EvtBulletHit }
func (HitByBulletEvent) EventType() string { return EvtHitByBullet }
func (BulletHitBulletEvent) EventType() string { return EvtBulletHitBullet }
func (BulletHitMissileEvent) EventType() string { return EvtBulletHitMissile }
func (MissileMissedEvent) EventType() string { return EvtMissileMissed }
func (MissileHitEvent) EventType() string { return EvtMissileHit }
func (HitByMissileEvent) EventType() string { return EvtHitByMissile }
func (MissileHitBulletEvent) EventType() string { return EvtMissileHitBullet }
func (MissileHitMissileEvent) EventType() string { return EvtMissileHitMissile }
func (DeathEvent) EventType() string { return EvtDeath }
func (ShipDeathEvent) EventType() string { return EvtShipDeath }
