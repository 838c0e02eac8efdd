package main

// ScoreLedger records the points a ship earns with its projectiles. Victims
// are identified by name.
type ScoreLedger interface {
	ScoreBulletDamage(victim string, damage float64)
	ScoreBulletKill(victim string)
	ScoreMissileDamage(victim string, damage float64)
	ScoreMissileKill(victim string)
}

// Statistics is the per-ship ScoreLedger. Kill bonuses are a share of the
// damage previously dealt to the same victim with the same weapon.
type Statistics struct {
	BulletDamage     float64
	BulletKillBonus  float64
	MissileDamage    float64
	MissileKillBonus float64
	Kills            int

	killBonusRatio  float64
	bulletDamageTo  map[string]float64
	missileDamageTo map[string]float64
}

var _ ScoreLedger = (*Statistics)(nil)

// NewStatistics creates an empty ledger
func NewStatistics(killBonusRatio float64) *Statistics {
	return &Statistics{
		killBonusRatio:  killBonusRatio,
		bulletDamageTo:  make(map[string]float64),
		missileDamageTo: make(map[string]float64),
	}
}

func (s *Statistics) ScoreBulletDamage(victim string, damage float64) {
	s.BulletDamage += damage
	s.bulletDamageTo[victim] += damage
}

func (s *Statistics) ScoreBulletKill(victim string) {
	s.BulletKillBonus += s.bulletDamageTo[victim] * s.killBonusRatio
	s.Kills++
}

func (s *Statistics) ScoreMissileDamage(victim string, damage float64) {
	s.MissileDamage += damage
	s.missileDamageTo[victim] += damage
}

func (s *Statistics) ScoreMissileKill(victim string) {
	s.MissileKillBonus += s.missileDamageTo[victim] * s.killBonusRatio
	s.Kills++
}

// Total is the overall score
func (s *Statistics) Total() float64 {
	return s.BulletDamage + s.BulletKillBonus + s.MissileDamage + s.MissileKillBonus
}

// DamageTo returns the damage dealt to victim by both weapons
func (s *Statistics) DamageTo(victim string) float64 {
	return s.bulletDamageTo[victim] + s.missileDamageTo[victim]
}
