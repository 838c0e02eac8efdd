package main

import (
	"math"
	"testing"
)

func eventTypes(evts []Event) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.EventType())
	}
	return out
}

func sameTypes(got []Event, want ...string) bool {
	types := eventTypes(got)
	if len(types) != len(want) {
		return false
	}
	for i := range want {
		if types[i] != want[i] {
			return false
		}
	}
	return true
}

func TestBulletHitsShip(t *testing.T) {
	w := NewWorld(DefaultRules())
	a := w.AddShip("alpha", "", 100, 100, 0)
	v := w.AddShip("bravo", "", 300, 320, 0)

	// Power 3 moves 11 per turn; the hull starts at y=270, so turn 7 crosses it
	b := w.SpawnBullet(a, 300, 200, 0, 3)
	stepN(w, 6)
	if v.Energy != 100 {
		t.Fatalf("no hit expected yet, bravo has %v", v.Energy)
	}
	w.Step()

	if b.State() != StateHitVictim {
		t.Fatalf("expected hit_victim, got %v", b.State())
	}
	if b.Victim() != v.Index {
		t.Errorf("expected victim %d, got %d", v.Index, b.Victim())
	}
	if v.Energy != 84 {
		t.Errorf("expected bravo energy 84, got %v", v.Energy)
	}
	if a.Energy != 109 {
		t.Errorf("expected alpha energy 109 after the hit bonus, got %v", a.Energy)
	}
	if a.Stats.BulletDamage != 16 {
		t.Errorf("expected 16 bullet damage, got %v", a.Stats.BulletDamage)
	}

	ae := a.DrainEvents()
	if !sameTypes(ae, EvtBulletHit) {
		t.Fatalf("unexpected alpha events %v", eventTypes(ae))
	}
	hit := ae[0].(BulletHitEvent)
	if hit.Name != "bravo" || hit.Energy != 84 || hit.Bullet.ID != b.ID() {
		t.Errorf("unexpected hit event %+v", hit)
	}

	ve := v.DrainEvents()
	if !sameTypes(ve, EvtHitByBullet) {
		t.Fatalf("unexpected bravo events %v", eventTypes(ve))
	}
	by := ve[0].(HitByBulletEvent)
	if by.Bullet.Owner != "alpha" {
		t.Errorf("expected owner alpha, got %q", by.Bullet.Owner)
	}
	if math.Abs(math.Abs(by.Bearing)-math.Pi) > 1e-9 {
		t.Errorf("head-on hit should come from dead ahead, bearing %v", by.Bearing)
	}
}

func TestBulletKill(t *testing.T) {
	w := NewWorld(DefaultRules())
	a := w.AddShip("alpha", "", 100, 100, 0)
	v := w.AddShip("bravo", "", 300, 320, 0)
	c := w.AddShip("charlie", "", 700, 500, 0)
	v.Energy = 10

	w.SpawnBullet(a, 300, 200, 0, 3)
	stepN(w, 7)

	if v.Alive || v.Energy != 0 {
		t.Fatalf("bravo should be destroyed, alive=%v energy=%v", v.Alive, v.Energy)
	}
	// Score is clipped to the 10 energy bravo had, plus 20% kill bonus
	if a.Stats.BulletDamage != 10 {
		t.Errorf("expected clipped damage 10, got %v", a.Stats.BulletDamage)
	}
	if !approx(a.Stats.Total(), 12) {
		t.Errorf("expected total score 12, got %v", a.Stats.Total())
	}
	if a.Stats.Kills != 1 {
		t.Errorf("expected 1 kill, got %d", a.Stats.Kills)
	}

	if !sameTypes(v.DrainEvents(), EvtHitByBullet, EvtDeath) {
		t.Error("bravo should be hit then die")
	}
	if !sameTypes(a.DrainEvents(), EvtBulletHit, EvtShipDeath) {
		t.Error("alpha should see the hit then the death")
	}
	ce := c.DrainEvents()
	if !sameTypes(ce, EvtShipDeath) || ce[0].(ShipDeathEvent).Name != "bravo" {
		t.Errorf("charlie should hear about bravo, got %v", eventTypes(ce))
	}
}

func TestHiddenEnemyNames(t *testing.T) {
	r := DefaultRules()
	r.HideEnemyNames = true
	w := NewWorld(r)
	a := w.AddShip("alpha", "", 100, 100, 0)
	v := w.AddShip("bravo", "", 300, 320, 0)

	w.SpawnBullet(a, 300, 200, 0, 3)
	stepN(w, 7)

	hit := a.DrainEvents()[0].(BulletHitEvent)
	if hit.Name != "#2" {
		t.Errorf("expected masked victim #2, got %q", hit.Name)
	}
	if hit.Bullet.Owner != "alpha" {
		t.Errorf("own name should not be masked, got %q", hit.Bullet.Owner)
	}
	by := v.DrainEvents()[0].(HitByBulletEvent)
	if by.Bullet.Owner != "#1" {
		t.Errorf("expected masked owner #1, got %q", by.Bullet.Owner)
	}
}

func TestBulletsCollide(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())

	// Power 1 bullets are 2x2 boxes moving 17 per turn
	x := w.SpawnBullet(a, 400, 200, 0, 1)
	y := w.SpawnBullet(b, 400, 218, math.Pi, 1)
	w.Step()

	if x.State() != StateHitProjectile || y.State() != StateHitProjectile {
		t.Fatalf("expected both hit_projectile, got %v and %v", x.State(), y.State())
	}
	if x.Position() != (Point{400, 200}) {
		t.Errorf("mover should snap back to its last position, got %v", x.Position())
	}
	if y.Position() != (Point{400, 218}) {
		t.Errorf("struck bullet did not move this turn, got %v", y.Position())
	}
	if !sameTypes(a.DrainEvents(), EvtBulletHitBullet) || !sameTypes(b.DrainEvents(), EvtBulletHitBullet) {
		t.Error("both owners should get bullet_hit_bullet")
	}
}

func TestBulletsPassWithoutNavalRules(t *testing.T) {
	r := DefaultRules()
	r.Naval = false
	w, _, _ := newTestWorld(r)
	a, b := w.Ship(0), w.Ship(1)

	x := w.SpawnBullet(a, 400, 200, 0, 1)
	y := w.SpawnBullet(b, 400, 218, math.Pi, 1)
	w.Step()
	if x.State() != StateMoving || y.State() != StateMoving {
		t.Errorf("bullets should pass each other, got %v and %v", x.State(), y.State())
	}
}

func TestSameOwnerBulletsPass(t *testing.T) {
	w, a, _ := newTestWorld(DefaultRules())
	x := w.SpawnBullet(a, 400, 200, 0, 1)
	y := w.SpawnBullet(a, 400, 218, math.Pi, 1)
	w.Step()
	for _, p := range []Projectile{x, y} {
		if p.State() != StateMoving {
			t.Errorf("bullet %d: expected moving, got %v", p.ID(), p.State())
		}
	}
}

func TestOwnMissilesCollide(t *testing.T) {
	w := NewWorld(DefaultRules())
	a := w.AddShip("alpha", "", 300, 300, 0)
	w.AddShip("bravo", "", 700, 100, 0)

	a.Launch(30, math.Pi/2)
	a.Launch(30, 3*math.Pi/2)
	w.Step()
	w.Step()

	ms := w.Missiles()
	if len(ms) != 2 {
		t.Fatalf("expected 2 missiles, got %d", len(ms))
	}
	for _, m := range ms {
		if m.State() != StateArrived {
			t.Errorf("missile %d: expected arrived on turn 2, got %v", m.ID(), m.State())
		}
	}

	hits := 0
	for _, e := range a.DrainEvents() {
		mhm, ok := e.(MissileHitMissileEvent)
		if !ok {
			continue
		}
		hits++
		if mhm.Missile.Active || mhm.HitMissile.Active {
			t.Errorf("both missiles are spent once the event is sent, got %+v", mhm)
		}
	}
	if hits != 2 {
		t.Errorf("the owner of both missiles should get 2 missile_hit_missile events, got %d", hits)
	}

	// 88 after launching, then 42 and 45 from its own blasts
	if !a.Alive || a.Energy != 1 {
		t.Errorf("expected alpha alive at 1, got %v alive=%v", a.Energy, a.Alive)
	}
	if a.Stats.Total() != 0 {
		t.Errorf("self hits score nothing, got %v", a.Stats.Total())
	}
}

func TestDistantMissilesDoNotCollide(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())
	r := w.Rules()
	if BoxesIntersect(r.MissileBox(300, 300), r.MissileBox(100, 100)) {
		t.Fatal("boxes at (300,300) and (100,100) should not intersect")
	}

	m1 := w.SpawnMissile(a, 300, 300, math.Pi/2, 30)
	m2 := w.SpawnMissile(b, 100, 100, math.Pi/2, 30)
	w.Step()
	if m1.State() != StateMoving || m2.State() != StateMoving {
		t.Errorf("neither missile should detonate, got %v and %v", m1.State(), m2.State())
	}
	if len(a.DrainEvents()) != 0 || len(b.DrainEvents()) != 0 {
		t.Error("no events expected")
	}
}

func TestPowerThreeBulletLeavesSmallHull(t *testing.T) {
	r := DefaultRules()
	r.ShipWidth = 20
	r.ShipHeight = 20
	w := NewWorld(r)
	a := w.AddShip("alpha", "", 100, 500, 0)
	v := w.AddShip("bravo", "", 300, 300, 0)

	// Hull spans 290..310; one move of 11 takes the bullet across y=310
	b := w.SpawnBullet(a, 300, 300, 0, 3)
	w.Step()

	if w.Turn() != 1 || b.State() != StateHitVictim {
		t.Fatalf("expected hit_victim on turn 1, got %v on turn %d", b.State(), w.Turn())
	}
	if want := r.ShipEnergy - r.BulletDamage(3); v.Energy != want {
		t.Errorf("expected bravo at %v, got %v", want, v.Energy)
	}
	if !sameTypes(v.DrainEvents(), EvtHitByBullet) {
		t.Error("bravo should be hit by the bullet")
	}
}

func TestFiredProjectileNeverCollides(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())
	fresh := w.SpawnBullet(a, 400, 300, 0, 1)
	mover := w.SpawnBullet(b, 400, 300, 0, 1)
	mover.setState(StateMoving, 0)

	if w.bulletHitsBullet(mover) {
		t.Error("a fired bullet is not a candidate")
	}
	fresh.setState(StateMoving, 0)
	if !w.bulletHitsBullet(mover) {
		t.Error("a moving bullet is a candidate")
	}
}

func TestMissilesCollide(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())

	// Power 30: speed 9, 16x16 bodies. The second missile closes the gap.
	m1 := w.SpawnMissile(a, 300, 300, math.Pi/2, 30)
	m2 := w.SpawnMissile(b, 330, 300, -math.Pi/2, 30)
	w.Step()

	if m1.State() != StateArrived || m2.State() != StateArrived {
		t.Fatalf("both missiles should detonate, got %v and %v", m1.State(), m2.State())
	}
	if !sameTypes(a.DrainEvents(), EvtMissileHitMissile) || !sameTypes(b.DrainEvents(), EvtMissileHitMissile) {
		t.Error("both owners should get missile_hit_missile")
	}
	if a.Energy != 100 || b.Energy != 100 {
		t.Error("blasts far from the ships should not hurt them")
	}
}

func TestBulletMeetsMissile(t *testing.T) {
	w, a, b := newTestWorld(DefaultRules())

	bullet := w.SpawnBullet(a, 400, 200, 0, 1)
	missile := w.SpawnMissile(b, 400, 230, math.Pi, 10)
	w.Step()

	if bullet.State() != StateHitProjectile {
		t.Errorf("expected bullet hit_projectile, got %v", bullet.State())
	}
	if bullet.Position() != (Point{400, 200}) {
		t.Errorf("bullet should snap back, got %v", bullet.Position())
	}
	if missile.State() != StateArrived {
		t.Errorf("expected missile arrived, got %v", missile.State())
	}
	if !sameTypes(a.DrainEvents(), EvtBulletHitMissile) {
		t.Error("bullet owner should get bullet_hit_missile")
	}
	if !sameTypes(b.DrainEvents(), EvtMissileHitBullet) {
		t.Error("missile owner should get missile_hit_bullet")
	}
}

func TestMissileDirectHit(t *testing.T) {
	w := NewWorld(DefaultRules())
	a := w.AddShip("alpha", "", 100, 500, 0)
	v := w.AddShip("bravo", "", 400, 300, 0)

	// Power 10 moves 11 per turn; the body reaches the hull on turn 9
	m := w.SpawnMissile(a, 400, 150, 0, 10)
	stepN(w, 8)
	if m.State() != StateMoving {
		t.Fatalf("expected moving, got %v", m.State())
	}
	w.Step()

	if m.State() != StateArrived || m.Victim() != v.Index {
		t.Fatalf("expected arrived on bravo, got %v victim %d", m.State(), m.Victim())
	}
	// 15 direct damage and nothing from its own blast
	if v.Energy != 85 {
		t.Errorf("expected bravo energy 85, got %v", v.Energy)
	}
	if a.Energy != 102 {
		t.Errorf("expected alpha energy 102, got %v", a.Energy)
	}
	if a.Stats.MissileDamage != 15 {
		t.Errorf("expected 15 missile damage, got %v", a.Stats.MissileDamage)
	}
	if !sameTypes(v.DrainEvents(), EvtHitByMissile) {
		t.Error("bravo should be hit once")
	}
	if !sameTypes(a.DrainEvents(), EvtMissileHit) {
		t.Error("alpha should score once")
	}
}
