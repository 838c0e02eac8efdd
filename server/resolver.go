package main

import "math"

// Collision resolution. Every check reads the current state of the other
// entities and applies its effect immediately, so projectiles updated later
// in the same turn see what earlier ones did. Candidates are scanned in
// ship index order and projectile creation order; the first match wins.

func (w *World) updateBullet(b *Bullet) {
	if b.moving() {
		b.advance(b.Velocity(w.rules), w.turn)
		w.resolveBullet(b)
	}
	b.tick(w.turn, w.rules.ExplosionLength)
}

func (w *World) updateMissile(m *Missile) {
	if m.moving() {
		m.traveled += m.advance(m.Velocity(w.rules), w.turn)
		w.resolveMissile(m)
	}
	m.tick(w.turn, w.rules.ExplosionLength)
}

func (w *World) resolveBullet(b *Bullet) {
	if b.hitsWall(w.rules) {
		b.setState(StateHitWall, w.turn)
		owner := w.ships[b.owner]
		owner.AddEvent(BulletMissedEvent{Bullet: w.info(b, owner)})
		return
	}
	if w.bulletHitsShip(b) {
		return
	}
	if !w.rules.Naval {
		return
	}
	if w.bulletHitsBullet(b) {
		return
	}
	w.bulletHitsMissile(b)
}

func (w *World) resolveMissile(m *Missile) {
	if m.outOfRange(w.rules) || m.hitsWall(w.rules) {
		m.setState(StateHitWall, w.turn)
		owner := w.ships[m.owner]
		owner.AddEvent(MissileMissedEvent{Missile: w.info(m, owner)})
		return
	}
	if w.missileHitsShip(m) {
		return
	}
	if !w.rules.Naval {
		return
	}
	if w.missileHitsBullet(m) {
		return
	}
	w.missileHitsMissile(m)
}

// bulletHitsShip tests the travel segment against each rotated ship body
func (w *World) bulletHitsShip(b *Bullet) bool {
	path := b.travelSegment()
	for _, s := range w.ships {
		if !s.Alive || s.Index == b.owner {
			continue
		}
		if SegmentIntersectsPolygon(s.Polygon(w.rules), path) {
			w.bulletStrike(b, s)
			return true
		}
	}
	return false
}

func (w *World) bulletStrike(b *Bullet, victim *Ship) {
	owner := w.ships[b.owner]
	damage := w.rules.BulletDamage(b.power)
	score := clipScore(damage, victim.Energy)

	victim.ApplyDamage(damage)
	owner.Stats.ScoreBulletDamage(victim.Name, score)
	killed := false
	if victim.Energy <= 0 && victim.Alive {
		victim.Kill()
		owner.Stats.ScoreBulletKill(victim.Name)
		killed = true
	}
	owner.Energy += w.rules.BulletHitBonus(b.power)

	b.setState(StateHitVictim, w.turn)
	if victim.Box(w.rules).Contains(b.LastPosition()) {
		b.snapBack(w.turn)
	}
	b.stickTo(victim)

	victim.AddEvent(HitByBulletEvent{
		Bearing: NormalizeAngle(b.heading + math.Pi - victim.Heading),
		Bullet:  w.info(b, victim),
	})
	owner.AddEvent(BulletHitEvent{
		Name:   w.nameFor(owner, victim),
		Energy: victim.Energy,
		Bullet: w.info(b, owner),
	})
	if killed {
		w.shipDestroyed(victim, owner)
	}
}

// bulletHitsBullet is the only pairing where a ship's own projectiles pass
// through each other
func (w *World) bulletHitsBullet(b *Bullet) bool {
	box := b.Box(w.rules)
	for _, o := range w.bullets {
		if o == b || !o.moving() || o.owner == b.owner {
			continue
		}
		if !BoxesIntersect(box, o.Box(w.rules)) {
			continue
		}
		b.setState(StateHitProjectile, w.turn)
		o.setState(StateHitProjectile, w.turn)
		b.snapBack(w.turn)
		o.snapBack(w.turn)

		bo := w.ships[b.owner]
		oo := w.ships[o.owner]
		bo.AddEvent(BulletHitBulletEvent{Bullet: w.info(b, bo), HitBullet: w.info(o, bo)})
		oo.AddEvent(BulletHitBulletEvent{Bullet: w.info(o, oo), HitBullet: w.info(b, oo)})
		return true
	}
	return false
}

func (w *World) bulletHitsMissile(b *Bullet) bool {
	box := b.Box(w.rules)
	for _, m := range w.missiles {
		if !m.moving() {
			continue
		}
		if !BoxesIntersect(box, m.Box(w.rules)) {
			continue
		}
		b.setState(StateHitProjectile, w.turn)
		b.snapBack(w.turn)
		w.crossFire(b, m)
		w.detonate(m, -1)
		return true
	}
	return false
}

func (w *World) missileHitsShip(m *Missile) bool {
	box := m.Box(w.rules)
	for _, s := range w.ships {
		if !s.Alive || s.Index == m.owner {
			continue
		}
		if BoxesIntersect(box, s.Box(w.rules)) {
			w.missileStrike(m, s)
			return true
		}
	}
	return false
}

// missileStrike applies a direct hit. The victim is immune to the blast that
// follows so it is never damaged twice by the same missile.
func (w *World) missileStrike(m *Missile, victim *Ship) {
	owner := w.ships[m.owner]
	damage := w.rules.MissileDamage(m.power)
	score := clipScore(damage, victim.Energy)

	victim.ApplyDamage(damage)
	owner.Stats.ScoreMissileDamage(victim.Name, score)
	killed := false
	if victim.Energy <= 0 && victim.Alive {
		victim.Kill()
		owner.Stats.ScoreMissileKill(victim.Name)
		killed = true
	}
	owner.Energy += w.rules.MissileHitBonus(m.power)

	if victim.Box(w.rules).Contains(m.LastPosition()) {
		m.snapBack(w.turn)
	}
	m.stickTo(victim)

	victim.AddEvent(HitByMissileEvent{
		Bearing: NormalizeAngle(m.heading + math.Pi - victim.Heading),
		Missile: w.info(m, victim),
	})
	owner.AddEvent(MissileHitEvent{
		Name:    w.nameFor(owner, victim),
		Energy:  victim.Energy,
		Missile: w.info(m, owner),
	})
	if killed {
		w.shipDestroyed(victim, owner)
	}
	w.detonate(m, victim.Index)
}

func (w *World) missileHitsBullet(m *Missile) bool {
	box := m.Box(w.rules)
	for _, b := range w.bullets {
		if !b.moving() {
			continue
		}
		if !BoxesIntersect(box, b.Box(w.rules)) {
			continue
		}
		b.setState(StateHitProjectile, w.turn)
		b.snapBack(w.turn)
		w.crossFire(b, m)
		w.detonate(m, -1)
		return true
	}
	return false
}

func (w *World) missileHitsMissile(m *Missile) bool {
	box := m.Box(w.rules)
	for _, o := range w.missiles {
		if o == m || !o.moving() {
			continue
		}
		if !BoxesIntersect(box, o.Box(w.rules)) {
			continue
		}
		w.detonate(m, -1)
		w.detonate(o, -1)
		mo := w.ships[m.owner]
		oo := w.ships[o.owner]
		mo.AddEvent(MissileHitMissileEvent{Missile: w.info(m, mo), HitMissile: w.info(o, mo)})
		oo.AddEvent(MissileHitMissileEvent{Missile: w.info(o, oo), HitMissile: w.info(m, oo)})
		return true
	}
	return false
}

// crossFire notifies both owners of a bullet meeting a missile
func (w *World) crossFire(b *Bullet, m *Missile) {
	bo := w.ships[b.owner]
	mo := w.ships[m.owner]
	bo.AddEvent(BulletHitMissileEvent{Bullet: w.info(b, bo), HitMissile: w.info(m, bo)})
	mo.AddEvent(MissileHitBulletEvent{Missile: w.info(m, mo), HitBullet: w.info(b, mo)})
}

// shipDestroyed tells the victim and every survivor about a kill
func (w *World) shipDestroyed(victim, killer *Ship) {
	w.log.Debug().Int("turn", w.turn).Str("victim", victim.Name).Str("killer", killer.Name).Msg("ship destroyed")
	victim.AddEvent(DeathEvent{Turn: w.turn})
	for _, s := range w.ships {
		if s != victim && s.Alive {
			s.AddEvent(ShipDeathEvent{Name: w.nameFor(s, victim)})
		}
	}
}

// clipScore limits credited damage to the energy the victim actually had
func clipScore(damage, energy float64) float64 {
	return math.Max(0, math.Min(damage, energy))
}
