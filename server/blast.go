package main

import "math"

// detonate ends a missile's flight and resolves its blast. immune is the
// index of a ship excluded from the blast, or -1. Only a missile in flight
// can detonate: one still on its launch turn or already spent is left alone.
func (w *World) detonate(m *Missile, immune int) {
	if !m.moving() {
		return
	}
	m.setState(StateArrived, w.turn)
	w.log.Debug().Int("turn", w.turn).Int("owner", m.owner).Int("missile", m.id).Msg("missile detonated")
	w.blast(m, immune)
}

// blast damages the first living ship whose box overlaps the blast square.
// The owner can be caught in its own blast but earns nothing for it.
func (w *World) blast(m *Missile, immune int) {
	area := w.rules.BlastBox(m.x, m.y, m.power)
	owner := w.ships[m.owner]
	for _, s := range w.ships {
		if !s.Alive || s.Index == immune {
			continue
		}
		if !BoxesIntersect(area, s.Box(w.rules)) {
			continue
		}
		self := s == owner
		damage := w.rules.BlastDamage(m.power, Distance(m.x, m.y, s.X, s.Y))
		score := clipScore(damage, s.Energy)

		s.ApplyDamage(damage)
		if !self {
			owner.Stats.ScoreMissileDamage(s.Name, score)
		}
		killed := false
		if s.Energy <= 0 && s.Alive {
			s.Kill()
			if !self {
				owner.Stats.ScoreMissileKill(s.Name)
			}
			killed = true
		}
		if !self {
			owner.Energy += w.rules.MissileHitBonus(m.power)
		}
		if m.victim < 0 {
			m.stickTo(s)
		}

		s.AddEvent(HitByMissileEvent{
			Bearing: NormalizeAngle(m.heading + math.Pi - s.Heading),
			Missile: w.info(m, s),
		})
		if !self {
			owner.AddEvent(MissileHitEvent{
				Name:    w.nameFor(owner, s),
				Energy:  s.Energy,
				Missile: w.info(m, owner),
			})
		}
		if killed {
			w.shipDestroyed(s, owner)
		}
		return
	}
}
