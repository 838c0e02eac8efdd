package main

import "math"

// CommandKind identifies a queued ship order
type CommandKind int8

const (
	CmdFire CommandKind = iota
	CmdLaunch
	CmdDetonate
)

// Command is an order queued by a ship controller and consumed by the World
// at the next turn.
type Command struct {
	Kind    CommandKind
	ID      int // projectile id assigned when the command was queued
	Power   float64
	Heading float64
}

// Ship is a battle participant. The World reads its geometry and mutates it
// only through ApplyDamage, Kill and AddEvent.
type Ship struct {
	Index    int
	Name     string
	Team     string
	X, Y     float64
	Heading  float64 // radians, 0 = +Y
	Velocity float64 // units per turn
	TurnRate float64 // radians per turn
	Energy   float64
	Alive    bool
	Stats    *Statistics

	events   []Event
	status   []ProjectileStatus
	commands []Command

	lastBulletID  int
	lastMissileID int
}

// NewShip creates a ship at the given position
func NewShip(index int, name, team string, x, y, heading, energy, killBonusRatio float64) *Ship {
	return &Ship{
		Index:   index,
		Name:    name,
		Team:    team,
		X:       x,
		Y:       y,
		Heading: heading,
		Energy:  energy,
		Alive:   true,
		Stats:   NewStatistics(killBonusRatio),
	}
}

// Update moves the ship one turn and keeps its box on the field
func (s *Ship) Update(r Rules) {
	if !s.Alive {
		return
	}
	turn := Clamp(s.TurnRate, -r.ShipMaxTurn, r.ShipMaxTurn)
	s.Heading = NormalizeAngle(s.Heading + turn)
	v := Clamp(s.Velocity, -r.ShipMaxSpeed, r.ShipMaxSpeed)
	s.X = Clamp(s.X+v*math.Sin(s.Heading), r.ShipWidth/2, r.FieldWidth-r.ShipWidth/2)
	s.Y = Clamp(s.Y+v*math.Cos(s.Heading), r.ShipHeight/2, r.FieldHeight-r.ShipHeight/2)
}

// Steer sets the velocity and turn rate used from the next turn on
func (s *Ship) Steer(velocity, turnRate float64) {
	s.Velocity = velocity
	s.TurnRate = turnRate
}

// Fire queues a bullet and returns its id
func (s *Ship) Fire(power, heading float64) int {
	s.lastBulletID++
	s.commands = append(s.commands, Command{Kind: CmdFire, ID: s.lastBulletID, Power: power, Heading: heading})
	return s.lastBulletID
}

// Launch queues a missile and returns its id
func (s *Ship) Launch(power, heading float64) int {
	s.lastMissileID++
	s.commands = append(s.commands, Command{Kind: CmdLaunch, ID: s.lastMissileID, Power: power, Heading: heading})
	return s.lastMissileID
}

// Detonate queues a manual detonation of one of this ship's missiles
func (s *Ship) Detonate(missileID int) {
	s.commands = append(s.commands, Command{Kind: CmdDetonate, ID: missileID})
}

// queuedCost is the energy the fire and launch orders waiting for the next
// turn will spend
func (s *Ship) queuedCost(r Rules) float64 {
	total := 0.0
	for _, c := range s.commands {
		switch c.Kind {
		case CmdFire:
			total += r.BulletEnergyCost(r.ClampBulletPower(c.Power))
		case CmdLaunch:
			total += r.MissileEnergyCost(r.ClampMissilePower(c.Power))
		}
	}
	return total
}

func (s *Ship) takeCommands() []Command {
	cmds := s.commands
	s.commands = nil
	return cmds
}

func (s *Ship) nextBulletID() int {
	s.lastBulletID++
	return s.lastBulletID
}

func (s *Ship) nextMissileID() int {
	s.lastMissileID++
	return s.lastMissileID
}

// Box is the axis-aligned body of the ship
func (s *Ship) Box(r Rules) Rect {
	return r.ShipBox(s.X, s.Y)
}

// Polygon is the ship body rotated to its heading
func (s *Ship) Polygon(r Rules) Polygon {
	return RotatedRectPolygon(s.Box(r), -s.Heading)
}

func (s *Ship) ApplyDamage(amount float64) {
	s.Energy -= amount
}

func (s *Ship) Kill() {
	s.Alive = false
	s.Energy = 0
	s.Velocity = 0
	s.TurnRate = 0
	s.commands = nil
}

func (s *Ship) AddEvent(e Event) {
	s.events = append(s.events, e)
}

// DrainEvents returns and clears the queued events
func (s *Ship) DrainEvents() []Event {
	evts := s.events
	s.events = nil
	return evts
}

// Status returns the owned projectile status of the latest turn
func (s *Ship) Status() []ProjectileStatus {
	return s.status
}

// IsTeammate reports whether o flies under the same team tag
func (s *Ship) IsTeammate(o *Ship) bool {
	return o != nil && s.Team != "" && s.Team == o.Team
}
