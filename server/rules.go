package main

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRules is returned by Rules.Validate
var ErrInvalidRules = errors.New("invalid rules")

// Rules holds every tunable constant of a battle. A Rules value is immutable
// once a World has been created with it.
type Rules struct {
	FieldWidth  float64 `mapstructure:"fieldWidth"`
	FieldHeight float64 `mapstructure:"fieldHeight"`

	ShipWidth     float64 `mapstructure:"shipWidth"`
	ShipHeight    float64 `mapstructure:"shipHeight"`
	ShipEnergy    float64 `mapstructure:"shipEnergy"`
	ShipMaxSpeed  float64 `mapstructure:"shipMaxSpeed"`
	ShipMaxTurn   float64 `mapstructure:"shipMaxTurn"` // radians per turn
	MissileWidth  float64 `mapstructure:"missileWidth"`
	MissileHeight float64 `mapstructure:"missileHeight"`

	ExplosionLength  int     `mapstructure:"explosionLength"` // turns
	ProjectileRadius float64 `mapstructure:"projectileRadius"`

	MinBulletPower  float64 `mapstructure:"minBulletPower"`
	MaxBulletPower  float64 `mapstructure:"maxBulletPower"`
	MinMissilePower float64 `mapstructure:"minMissilePower"`
	MaxMissilePower float64 `mapstructure:"maxMissilePower"`
	MinBlastDamage  float64 `mapstructure:"minBlastDamage"`
	KillBonusRatio  float64 `mapstructure:"killBonusRatio"`

	// Naval enables projectile-vs-projectile collisions.
	Naval          bool `mapstructure:"naval"`
	HideEnemyNames bool `mapstructure:"hideEnemyNames"`
}

// DefaultRules returns the standard naval rule set
func DefaultRules() Rules {
	return Rules{
		FieldWidth:       800,
		FieldHeight:      600,
		ShipWidth:        40,
		ShipHeight:       100,
		ShipEnergy:       100,
		ShipMaxSpeed:     8,
		ShipMaxTurn:      math.Pi / 18,
		MissileWidth:     16,
		MissileHeight:    16,
		ExplosionLength:  17,
		ProjectileRadius: 3,
		MinBulletPower:   0.1,
		MaxBulletPower:   3,
		MinMissilePower:  1,
		MaxMissilePower:  50,
		MinBlastDamage:   5,
		KillBonusRatio:   0.2,
		Naval:            true,
	}
}

// Validate checks that the rules describe a playable battle
func (r Rules) Validate() error {
	switch {
	case r.FieldWidth <= 0 || r.FieldHeight <= 0:
		return fmt.Errorf("%w: field must be positive, got %gx%g", ErrInvalidRules, r.FieldWidth, r.FieldHeight)
	case r.ShipWidth <= 0 || r.ShipHeight <= 0:
		return fmt.Errorf("%w: ship size must be positive", ErrInvalidRules)
	case r.ShipWidth >= r.FieldWidth || r.ShipHeight >= r.FieldHeight:
		return fmt.Errorf("%w: ship does not fit on the field", ErrInvalidRules)
	case r.MissileWidth <= 0 || r.MissileHeight <= 0:
		return fmt.Errorf("%w: missile size must be positive", ErrInvalidRules)
	case r.ExplosionLength < 1:
		return fmt.Errorf("%w: explosion length must be at least 1", ErrInvalidRules)
	case r.MinBulletPower <= 0 || r.MaxBulletPower < r.MinBulletPower:
		return fmt.Errorf("%w: bullet power range [%g, %g]", ErrInvalidRules, r.MinBulletPower, r.MaxBulletPower)
	case r.MinMissilePower <= 0 || r.MaxMissilePower < r.MinMissilePower:
		return fmt.Errorf("%w: missile power range [%g, %g]", ErrInvalidRules, r.MinMissilePower, r.MaxMissilePower)
	case r.BulletSpeed(r.MaxBulletPower) <= 0 || r.MissileSpeed(r.MaxMissilePower) <= 0:
		return fmt.Errorf("%w: projectile speed must stay positive", ErrInvalidRules)
	}
	return nil
}

// ClampBulletPower restricts p to the legal bullet power range
func (r Rules) ClampBulletPower(p float64) float64 {
	return Clamp(p, r.MinBulletPower, r.MaxBulletPower)
}

// ClampMissilePower restricts p to the legal missile power range
func (r Rules) ClampMissilePower(p float64) float64 {
	return Clamp(p, r.MinMissilePower, r.MaxMissilePower)
}

func (r Rules) BulletSpeed(power float64) float64 {
	return 20 - 3*power
}

func (r Rules) BulletDamage(power float64) float64 {
	d := 4 * power
	if power > 1 {
		d += 2 * (power - 1)
	}
	return d
}

func (r Rules) BulletHitBonus(power float64) float64 {
	return 3 * power
}

func (r Rules) BulletEnergyCost(power float64) float64 {
	return power
}

func (r Rules) MissileSpeed(power float64) float64 {
	return 12 - power/10
}

func (r Rules) MissileDamage(power float64) float64 {
	return 1.5 * power
}

// MissileRange is the distance a missile may travel before it counts as a miss
func (r Rules) MissileRange(power float64) float64 {
	return 400 + 10*power
}

func (r Rules) MissileBlastRadius(power float64) float64 {
	return 20 + power
}

func (r Rules) MissileHitBonus(power float64) float64 {
	return power / 5
}

func (r Rules) MissileEnergyCost(power float64) float64 {
	return power / 5
}

// BlastDamage returns the splash damage dealt at distance from the blast center
func (r Rules) BlastDamage(power, distance float64) float64 {
	return math.Max(r.MissileDamage(power)-distance/3, r.MinBlastDamage)
}

// ShipBox is the axis-aligned bounding box of a ship centered on (x, y)
func (r Rules) ShipBox(x, y float64) Rect {
	return CenteredRect(x, y, r.ShipWidth, r.ShipHeight)
}

// MissileBox is the body of a missile centered on (x, y)
func (r Rules) MissileBox(x, y float64) Rect {
	return CenteredRect(x, y, r.MissileWidth, r.MissileHeight)
}

// BulletBox is the square used for bullet-vs-projectile tests
func (r Rules) BulletBox(x, y, power float64) Rect {
	return Rect{X: x - power, Y: y - power, W: 2 * power, H: 2 * power}
}

// BlastBox approximates the blast circle by its bounding square
func (r Rules) BlastBox(x, y, power float64) Rect {
	radius := r.MissileBlastRadius(power)
	return Rect{X: x - radius, Y: y - radius, W: 2 * radius, H: 2 * radius}
}
