package main

import "math"

// Kind tells bullets and missiles apart on the wire
type Kind int8

const (
	KindBullet Kind = iota
	KindMissile
)

func (k Kind) String() string {
	if k == KindMissile {
		return "missile"
	}
	return "bullet"
}

// Projectile is the contract shared by bullets and missiles
type Projectile interface {
	ID() int
	Kind() Kind
	Owner() int
	Victim() int
	State() ProjectileState
	IsActive() bool
	Position() Point
	PaintPosition(ships []*Ship) Point
	Velocity(r Rules) float64
	base() *projectile
}

// projectile holds the state common to both kinds. Owner and victim are ship
// indexes into the World; victim is -1 until something is hit.
type projectile struct {
	id     int
	owner  int
	victim int
	seq    int // world-wide creation order

	heading float64
	power   float64

	x, y         float64
	lastX, lastY float64
	deltaX       float64 // offset from victim while sticking to it
	deltaY       float64

	state     ProjectileState
	frame     int
	spawnTurn int
	stateTurn int
	movedTurn int
}

func newProjectile(id, owner, seq, turn int, x, y, heading, power float64) projectile {
	return projectile{
		id:        id,
		owner:     owner,
		victim:    -1,
		seq:       seq,
		heading:   heading,
		power:     power,
		x:         x,
		y:         y,
		lastX:     x,
		lastY:     y,
		state:     StateFired,
		spawnTurn: turn,
		stateTurn: turn,
	}
}

func (p *projectile) base() *projectile { return p }
func (p *projectile) ID() int { return p.id }
func (p *projectile) Owner() int { return p.owner }
func (p *projectile) Victim() int { return p.victim }
func (p *projectile) Heading() float64 { return p.heading }
func (p *projectile) Power() float64 { return p.power }
func (p *projectile) State() ProjectileState { return p.state }
func (p *projectile) Frame() int { return p.frame }
func (p *projectile) IsActive() bool { return p.state.IsActive() }
func (p *projectile) Position() Point { return Point{p.x, p.y} }
func (p *projectile) LastPosition() Point { return Point{p.lastX, p.lastY} }
func (p *projectile) moving() bool { return p.state == StateMoving }
func (p *projectile) travelSegment() Segment { return Segment{A: p.LastPosition(), B: p.Position()} }
func (p *projectile) enteredThisTurn(t int) bool { return p.stateTurn == t }

// advance moves one step along the heading and returns the distance covered
func (p *projectile) advance(v float64, turn int) float64 {
	p.movedTurn = turn
	p.lastX = p.x
	p.lastY = p.y
	p.x += v * math.Sin(p.heading)
	p.y += v * math.Cos(p.heading)
	return v
}

// snapBack undoes an advance made during turn
func (p *projectile) snapBack(turn int) {
	if p.movedTurn != turn {
		return
	}
	p.x = p.lastX
	p.y = p.lastY
}

func (p *projectile) setState(s ProjectileState, turn int) {
	p.state = s
	p.frame = 0
	p.stateTurn = turn
}

// promote moves a projectile fired on an earlier turn into flight
func (p *projectile) promote(turn int) {
	if p.state == StateFired && p.spawnTurn < turn {
		p.setState(StateMoving, turn)
	}
}

// stickTo records the offset used to paint the projectile on its victim
func (p *projectile) stickTo(victim *Ship) {
	p.victim = victim.Index
	p.deltaX = p.x - victim.X
	p.deltaY = p.y - victim.Y
}

func (p *projectile) paint(ships []*Ship, sticky bool) Point {
	if sticky && p.victim >= 0 && p.victim < len(ships) {
		v := ships[p.victim]
		return Point{v.X + p.deltaX, v.Y + p.deltaY}
	}
	return p.Position()
}

// tick advances the post-impact animation. A state entered this turn is
// left alone until the next one.
func (p *projectile) tick(turn, explosionLength int) {
	if p.enteredThisTurn(turn) {
		return
	}
	p.frame++
	switch p.state {
	case StateHitVictim, StateHitProjectile, StateHitWall:
		if p.frame >= explosionLength {
			p.setState(StateInactive, turn)
		}
	case StateArrived:
		p.setState(StateExploding, turn)
	case StateExploding:
		if p.frame >= explosionLength {
			p.setState(StateExploded, turn)
		}
	case StateExploded:
		p.setState(StateInactive, turn)
	}
}

// Bullet is a fast projectile sampled as a line segment between turns
type Bullet struct {
	projectile
}

func (b *Bullet) Kind() Kind { return KindBullet }

func (b *Bullet) Velocity(r Rules) float64 {
	return r.BulletSpeed(b.power)
}

// Box is the square used against other projectiles
func (b *Bullet) Box(r Rules) Rect {
	return r.BulletBox(b.x, b.y, b.power)
}

func (b *Bullet) hitsWall(r Rules) bool {
	rad := r.ProjectileRadius
	return b.x-rad <= 0 || b.y-rad <= 0 || b.x+rad >= r.FieldWidth || b.y+rad >= r.FieldHeight
}

func (b *Bullet) PaintPosition(ships []*Ship) Point {
	return b.paint(ships, b.state == StateHitVictim)
}

// Missile is a slow projectile with a body, a range and a blast
type Missile struct {
	projectile
	traveled float64
}

func (m *Missile) Kind() Kind { return KindMissile }

func (m *Missile) Velocity(r Rules) float64 {
	return r.MissileSpeed(m.power)
}

// Traveled is the total distance covered since launch
func (m *Missile) Traveled() float64 { return m.traveled }

func (m *Missile) Box(r Rules) Rect {
	return r.MissileBox(m.x, m.y)
}

func (m *Missile) outOfRange(r Rules) bool {
	return m.traveled > r.MissileRange(m.power)
}

func (m *Missile) hitsWall(r Rules) bool {
	box := m.Box(r)
	return box.X <= 0 || box.Y <= 0 || box.X+box.W >= r.FieldWidth || box.Y+box.H >= r.FieldHeight
}

func (m *Missile) PaintPosition(ships []*Ship) Point {
	return m.paint(ships, m.state == StateArrived || m.state == StateExploding)
}
