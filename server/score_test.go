package main

import "testing"

func TestStatisticsKillBonus(t *testing.T) {
	s := NewStatistics(0.2)
	s.ScoreBulletDamage("bravo", 10)
	s.ScoreMissileDamage("bravo", 20)
	s.ScoreBulletDamage("charlie", 50)

	s.ScoreBulletKill("bravo")
	if !approx(s.BulletKillBonus, 2) {
		t.Errorf("bullet bonus only counts bullet damage to bravo, got %v", s.BulletKillBonus)
	}
	s.ScoreMissileKill("bravo")
	if !approx(s.MissileKillBonus, 4) {
		t.Errorf("expected missile bonus 4, got %v", s.MissileKillBonus)
	}
	if s.Kills != 2 {
		t.Errorf("expected 2 kills, got %d", s.Kills)
	}
	if !approx(s.Total(), 10+20+50+2+4) {
		t.Errorf("unexpected total %v", s.Total())
	}
	if s.DamageTo("bravo") != 30 {
		t.Errorf("expected 30 damage to bravo, got %v", s.DamageTo("bravo"))
	}
}

func TestStatisticsKillWithoutDamage(t *testing.T) {
	s := NewStatistics(0.2)
	s.ScoreMissileKill("ghost")
	if s.MissileKillBonus != 0 {
		t.Errorf("no damage means no bonus, got %v", s.MissileKillBonus)
	}
}

func TestClipScore(t *testing.T) {
	if clipScore(16, 100) != 16 {
		t.Error("damage below energy is credited in full")
	}
	if clipScore(16, 10) != 10 {
		t.Error("damage is clipped to the remaining energy")
	}
	if clipScore(16, -4) != 0 {
		t.Error("a ship already out of energy yields nothing")
	}
}
