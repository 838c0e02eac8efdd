package main

import (
	"fmt"

	"github.com/rs/zerolog"
)

// World is the authoritative state of one battle. Step advances it by one
// turn; nothing in a World is safe for concurrent use.
type World struct {
	rules Rules
	log   zerolog.Logger

	turn     int
	seq      int
	ships    []*Ship
	bullets  []*Bullet
	missiles []*Missile
}

// NewWorld creates an empty world. The rules are copied and never change.
func NewWorld(rules Rules) *World {
	return &World{
		rules: rules,
		log:   Logger.With().Str("component", "world").Logger(),
	}
}

// SetLogger replaces the logger used for kill and detonation traces
func (w *World) SetLogger(l zerolog.Logger) {
	w.log = l
}

func (w *World) Rules() Rules { return w.rules }
func (w *World) Turn() int { return w.turn }
func (w *World) Ships() []*Ship { return w.ships }
func (w *World) Bullets() []*Bullet { return w.bullets }
func (w *World) Missiles() []*Missile { return w.missiles }

// AddShip places a new ship. Indexes are assigned in join order.
func (w *World) AddShip(name, team string, x, y, heading float64) *Ship {
	s := NewShip(len(w.ships), name, team, x, y, heading, w.rules.ShipEnergy, w.rules.KillBonusRatio)
	w.ships = append(w.ships, s)
	return s
}

// Ship returns the ship with the given index, or nil
func (w *World) Ship(index int) *Ship {
	if index < 0 || index >= len(w.ships) {
		return nil
	}
	return w.ships[index]
}

// SpawnBullet puts a FIRED bullet into the world on the current turn
func (w *World) SpawnBullet(owner *Ship, x, y, heading, power float64) *Bullet {
	return w.spawnBullet(owner, owner.nextBulletID(), x, y, heading, power)
}

// SpawnMissile puts a FIRED missile into the world on the current turn
func (w *World) SpawnMissile(owner *Ship, x, y, heading, power float64) *Missile {
	return w.spawnMissile(owner, owner.nextMissileID(), x, y, heading, power)
}

func (w *World) spawnBullet(owner *Ship, id int, x, y, heading, power float64) *Bullet {
	w.seq++
	b := &Bullet{projectile: newProjectile(id, owner.Index, w.seq, w.turn, x, y, heading, w.rules.ClampBulletPower(power))}
	w.bullets = append(w.bullets, b)
	return b
}

func (w *World) spawnMissile(owner *Ship, id int, x, y, heading, power float64) *Missile {
	w.seq++
	m := &Missile{projectile: newProjectile(id, owner.Index, w.seq, w.turn, x, y, heading, w.rules.ClampMissilePower(power))}
	w.missiles = append(w.missiles, m)
	return m
}

// Step runs one turn and returns its snapshot
func (w *World) Step() TurnSnapshot {
	w.turn++
	w.removeInactive()

	for _, s := range w.ships {
		s.Update(w.rules)
	}

	for _, b := range w.bullets {
		b.promote(w.turn)
	}
	for _, m := range w.missiles {
		m.promote(w.turn)
	}

	w.runCommands()

	for _, b := range w.bullets {
		w.updateBullet(b)
	}
	for _, m := range w.missiles {
		w.updateMissile(m)
	}

	w.reportStatus()
	return w.Snapshot()
}

func (w *World) removeInactive() {
	bullets := w.bullets[:0]
	for _, b := range w.bullets {
		if b.state != StateInactive {
			bullets = append(bullets, b)
		}
	}
	clear(w.bullets[len(bullets):])
	w.bullets = bullets

	missiles := w.missiles[:0]
	for _, m := range w.missiles {
		if m.state != StateInactive {
			missiles = append(missiles, m)
		}
	}
	clear(w.missiles[len(missiles):])
	w.missiles = missiles
}

// runCommands consumes queued orders in ship index order
func (w *World) runCommands() {
	for _, s := range w.ships {
		cmds := s.takeCommands()
		if !s.Alive {
			continue
		}
		for _, cmd := range cmds {
			switch cmd.Kind {
			case CmdFire:
				power := w.rules.ClampBulletPower(cmd.Power)
				cost := w.rules.BulletEnergyCost(power)
				if s.Energy < cost {
					w.log.Debug().Str("ship", s.Name).Float64("power", power).Msg("not enough energy to fire")
					continue
				}
				s.Energy -= cost
				w.spawnBullet(s, cmd.ID, s.X, s.Y, cmd.Heading, power)
			case CmdLaunch:
				power := w.rules.ClampMissilePower(cmd.Power)
				cost := w.rules.MissileEnergyCost(power)
				if s.Energy < cost {
					w.log.Debug().Str("ship", s.Name).Float64("power", power).Msg("not enough energy to launch")
					continue
				}
				s.Energy -= cost
				w.spawnMissile(s, cmd.ID, s.X, s.Y, cmd.Heading, power)
			case CmdDetonate:
				if m := w.findMissile(s.Index, cmd.ID); m != nil {
					w.detonate(m, -1)
				}
			}
		}
	}
}

func (w *World) findMissile(owner, id int) *Missile {
	for _, m := range w.missiles {
		if m.owner == owner && m.id == id {
			return m
		}
	}
	return nil
}

// reportStatus refreshes every ship's view of its own projectiles
func (w *World) reportStatus() {
	for _, s := range w.ships {
		s.status = s.status[:0]
	}
	for _, b := range w.bullets {
		w.addStatus(b)
	}
	for _, m := range w.missiles {
		w.addStatus(m)
	}
}

func (w *World) addStatus(p Projectile) {
	owner := w.ships[p.Owner()]
	pos := p.Position()
	st := ProjectileStatus{
		ID:     p.ID(),
		Kind:   p.Kind(),
		X:      pos.X,
		Y:      pos.Y,
		Active: p.IsActive(),
	}
	if v := w.Ship(p.Victim()); v != nil {
		st.Victim = w.nameFor(owner, v)
	}
	owner.status = append(owner.status, st)
}

// nameFor returns the name of subject as seen by viewer
func (w *World) nameFor(viewer, subject *Ship) string {
	if subject == nil {
		return ""
	}
	if w.rules.HideEnemyNames && viewer != subject && !viewer.IsTeammate(subject) {
		return fmt.Sprintf("#%d", subject.Index+1)
	}
	return subject.Name
}

// info copies a projectile's public fields for an event sent to viewer
func (w *World) info(p Projectile, viewer *Ship) ProjectileInfo {
	b := p.base()
	pi := ProjectileInfo{
		ID:      b.id,
		Kind:    p.Kind(),
		Owner:   w.nameFor(viewer, w.ships[b.owner]),
		X:       b.x,
		Y:       b.y,
		Heading: b.heading,
		Power:   b.power,
		Active:  b.IsActive(),
	}
	if v := w.Ship(b.victim); v != nil {
		pi.Victim = w.nameFor(viewer, v)
	}
	return pi
}

// AliveCount returns the number of ships still alive
func (w *World) AliveCount() int {
	n := 0
	for _, s := range w.ships {
		if s.Alive {
			n++
		}
	}
	return n
}

// Decided reports whether at most one side is left. Untagged ships are
// their own side.
func (w *World) Decided() bool {
	sides := make(map[string]struct{})
	for _, s := range w.ships {
		if !s.Alive {
			continue
		}
		key := s.Team
		if key == "" {
			key = fmt.Sprintf("ship-%d", s.Index)
		}
		sides[key] = struct{}{}
	}
	return len(sides) <= 1
}
