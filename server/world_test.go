package main

import (
	"math"
	"testing"
)

// newTestWorld returns a world with two ships far from the middle of the
// field, out of the way of test projectiles.
func newTestWorld(r Rules) (*World, *Ship, *Ship) {
	w := NewWorld(r)
	a := w.AddShip("alpha", "", 100, 500, 0)
	b := w.AddShip("bravo", "", 700, 100, 0)
	return w, a, b
}

func stepN(w *World, n int) TurnSnapshot {
	var snap TurnSnapshot
	for i := 0; i < n; i++ {
		snap = w.Step()
	}
	return snap
}

func TestWorldAddShip(t *testing.T) {
	w := NewWorld(DefaultRules())
	a := w.AddShip("alpha", "red", 100, 100, 0)
	b := w.AddShip("bravo", "red", 200, 200, 0)
	if a.Index != 0 || b.Index != 1 {
		t.Errorf("expected indexes 0 and 1, got %d and %d", a.Index, b.Index)
	}
	if a.Energy != DefaultRules().ShipEnergy {
		t.Errorf("expected full energy, got %v", a.Energy)
	}
	if w.Ship(2) != nil || w.Ship(-1) != nil {
		t.Error("out of range index should return nil")
	}
}

func TestFireCommand(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())

	id := a.Fire(1, math.Pi/2)
	if id != 1 {
		t.Errorf("expected bullet id 1, got %d", id)
	}
	w.Step()

	bullets := w.Bullets()
	if len(bullets) != 1 {
		t.Fatalf("expected 1 bullet, got %d", len(bullets))
	}
	b := bullets[0]
	if b.State() != StateFired {
		t.Errorf("bullet should stay fired on its spawn turn, got %v", b.State())
	}
	if b.Position() != (Point{a.X, a.Y}) {
		t.Errorf("bullet should spawn at the ship, got %v", b.Position())
	}
	if a.Energy != 99 {
		t.Errorf("expected energy 99 after firing, got %v", a.Energy)
	}
	status := a.Status()
	if len(status) != 1 || status[0].ID != 1 || !status[0].Active {
		t.Errorf("unexpected status %+v", status)
	}

	w.Step()
	if b.State() != StateMoving {
		t.Errorf("expected moving on the next turn, got %v", b.State())
	}
	if !approx(b.Position().X, a.X+17) {
		t.Errorf("expected bullet 17 units east, got %v", b.Position())
	}
}

func TestFireWithoutEnergyIsDropped(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())
	a.Energy = 0.5

	a.Fire(1, 0)
	a.Launch(10, 0)
	w.Step()

	if len(w.Bullets()) != 0 || len(w.Missiles()) != 0 {
		t.Error("commands beyond the energy budget should be dropped")
	}
	if a.Energy != 0.5 {
		t.Errorf("energy should be untouched, got %v", a.Energy)
	}
}

func TestPowerIsClamped(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())
	b := w.SpawnBullet(a, 400, 300, 0, 9)
	m := w.SpawnMissile(a, 400, 300, 0, 0)
	if b.Power() != 3 {
		t.Errorf("expected bullet power 3, got %v", b.Power())
	}
	if m.Power() != 1 {
		t.Errorf("expected missile power 1, got %v", m.Power())
	}
	if b.ID() != 1 || m.ID() != 1 {
		t.Error("ids are assigned per ship and kind")
	}
}

func TestBulletWallLifecycle(t *testing.T) {
	r := DefaultRules()
	w, a, _ := newTestWorld(r)

	// 17 units per turn heading north from y=100 reaches the wall on turn 6
	b := w.SpawnBullet(a, 400, 100, math.Pi, 1)
	stepN(w, 5)
	if b.State() != StateMoving {
		t.Fatalf("expected moving, got %v", b.State())
	}
	w.Step()
	if b.State() != StateHitWall {
		t.Fatalf("expected hit_wall on turn 6, got %v", b.State())
	}
	evts := a.DrainEvents()
	if len(evts) != 1 || evts[0].EventType() != EvtBulletMissed {
		t.Fatalf("expected one bullet_missed event, got %v", evts)
	}

	stepN(w, r.ExplosionLength)
	if b.State() != StateInactive {
		t.Fatalf("expected inactive, got %v", b.State())
	}
	if len(w.Bullets()) != 1 {
		t.Error("inactive bullet stays until the next turn")
	}
	w.Step()
	if len(w.Bullets()) != 0 {
		t.Error("inactive bullet should be removed")
	}
}

func TestMissileOutOfRangeMissesOnce(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())

	// Power 1: 11.9 per turn, range 410, so the 35th move is out of range
	m := w.SpawnMissile(a, 100, 300, math.Pi/2, 1)
	stepN(w, 34)
	if m.State() != StateMoving {
		t.Fatalf("expected moving after 34 turns, got %v", m.State())
	}
	w.Step()
	if m.State() != StateHitWall {
		t.Fatalf("expected hit_wall, got %v", m.State())
	}
	stepN(w, 5)

	evts := a.DrainEvents()
	if len(evts) != 1 || evts[0].EventType() != EvtMissileMissed {
		t.Fatalf("expected a single missile_missed event, got %v", evts)
	}
	if a.Energy != 100 || b.Energy != 100 {
		t.Error("a missed missile should not blast anyone")
	}
}

func TestDetonateCommand(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())
	m := w.SpawnMissile(a, 400, 300, 0, 10)
	w.Step()

	a.Detonate(m.ID())
	a.Detonate(99) // unknown id is ignored
	w.Step()
	if m.State() != StateArrived {
		t.Errorf("expected arrived, got %v", m.State())
	}
	pos := m.Position()
	w.Step()
	if m.State() != StateExploding {
		t.Errorf("expected exploding, got %v", m.State())
	}
	if m.Position() != pos {
		t.Error("detonated missile should stop moving")
	}
}

func TestDetonateOnLaunchTurnIgnored(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())

	id := a.Launch(30, 0)
	a.Detonate(id)
	w.Step()

	ms := w.Missiles()
	if len(ms) != 1 || ms[0].State() != StateFired {
		t.Fatalf("missile should still be fired on its launch turn, got %+v", ms)
	}
	if a.Energy != 94 {
		t.Errorf("only the launch cost should be paid, alpha has %v", a.Energy)
	}
	if evts := a.DrainEvents(); len(evts) != 0 {
		t.Errorf("no events expected, got %v", eventTypes(evts))
	}

	w.Step()
	if ms[0].State() != StateMoving {
		t.Errorf("expected moving on the next turn, got %v", ms[0].State())
	}
}

func TestDetonateInactiveMissileIsNoop(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())
	// Park a spent missile right on top of bravo
	m := w.SpawnMissile(a, b.X, b.Y, 0, 50)
	m.setState(StateHitWall, 0)

	w.detonate(m, -1)
	if m.State() != StateHitWall {
		t.Errorf("state should be unchanged, got %v", m.State())
	}
	if b.Energy != 100 {
		t.Errorf("no blast expected, bravo has %v", b.Energy)
	}
}

func TestDeadShipCommandsIgnored(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())
	a.Fire(1, 0)
	a.Kill()
	w.Step()
	if len(w.Bullets()) != 0 {
		t.Error("dead ship should not fire")
	}
}

func TestDecided(t *testing.T) {
	w, _, b := newTestWorld(DefaultRules())
	if w.Decided() {
		t.Error("two untagged ships are two sides")
	}
	b.Kill()
	if !w.Decided() {
		t.Error("one ship left should decide the battle")
	}
	if w.AliveCount() != 1 {
		t.Errorf("expected 1 alive, got %d", w.AliveCount())
	}

	w2 := NewWorld(DefaultRules())
	w2.AddShip("a", "red", 100, 100, 0)
	w2.AddShip("b", "red", 300, 300, 0)
	if !w2.Decided() {
		t.Error("one team left should decide the battle")
	}
	w2.AddShip("c", "blue", 500, 300, 0)
	if w2.Decided() {
		t.Error("two teams should not be decided")
	}
}

func TestShipUpdateStaysOnField(t *testing.T) {
	r := DefaultRules()
	s := NewShip(0, "alpha", "", 400, 545, 0, 100, 0.2)
	s.Steer(100, 0)
	s.Update(r)
	if s.Y != r.FieldHeight-r.ShipHeight/2 {
		t.Errorf("expected ship clamped to %v, got %v", r.FieldHeight-r.ShipHeight/2, s.Y)
	}

	s.Steer(0, 1)
	s.Update(r)
	if !approx(s.Heading, r.ShipMaxTurn) {
		t.Errorf("turn rate should be clamped to %v, got %v", r.ShipMaxTurn, s.Heading)
	}
}
