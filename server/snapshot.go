package main

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ShipSnapshot is the per-turn view of a ship
type ShipSnapshot struct {
	Index   int     `json:"i" msgpack:"i"`
	Name    string  `json:"n" msgpack:"n"`
	Team    string  `json:"tm,omitempty" msgpack:"tm,omitempty"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Heading float64 `json:"h" msgpack:"h"`
	Energy  float64 `json:"e" msgpack:"e"`
	Alive   bool    `json:"a" msgpack:"a"`
	Score   float64 `json:"sc" msgpack:"sc"`
}

// ProjectileSnapshot is the per-turn view of a bullet or missile
type ProjectileSnapshot struct {
	Kind        Kind            `json:"k" msgpack:"k"`
	ID          int             `json:"id" msgpack:"id"`
	State       ProjectileState `json:"s" msgpack:"s"`
	Power       float64         `json:"p" msgpack:"p"`
	X           float64         `json:"x" msgpack:"x"`
	Y           float64         `json:"y" msgpack:"y"`
	PaintX      float64         `json:"px" msgpack:"px"`
	PaintY      float64         `json:"py" msgpack:"py"`
	Frame       int             `json:"f" msgpack:"f"`
	OwnerIndex  int             `json:"o" msgpack:"o"`
	VictimIndex int             `json:"v" msgpack:"v"`
	Heading     float64         `json:"h" msgpack:"h"`
}

// TurnSnapshot is everything a spectator needs to draw one turn
type TurnSnapshot struct {
	Turn     int                  `json:"turn" msgpack:"turn"`
	Ships    []ShipSnapshot       `json:"ships" msgpack:"ships"`
	Bullets  []ProjectileSnapshot `json:"bullets" msgpack:"bullets"`
	Missiles []ProjectileSnapshot `json:"missiles" msgpack:"missiles"`
}

// Snapshot captures the current turn
func (w *World) Snapshot() TurnSnapshot {
	snap := TurnSnapshot{
		Turn:     w.turn,
		Ships:    make([]ShipSnapshot, 0, len(w.ships)),
		Bullets:  make([]ProjectileSnapshot, 0, len(w.bullets)),
		Missiles: make([]ProjectileSnapshot, 0, len(w.missiles)),
	}
	for _, s := range w.ships {
		snap.Ships = append(snap.Ships, ShipSnapshot{
			Index:   s.Index,
			Name:    s.Name,
			Team:    s.Team,
			X:       round1(s.X),
			Y:       round1(s.Y),
			Heading: s.Heading,
			Energy:  s.Energy,
			Alive:   s.Alive,
			Score:   s.Stats.Total(),
		})
	}
	for _, b := range w.bullets {
		snap.Bullets = append(snap.Bullets, w.projectileSnapshot(b))
	}
	for _, m := range w.missiles {
		snap.Missiles = append(snap.Missiles, w.projectileSnapshot(m))
	}
	return snap
}

func (w *World) projectileSnapshot(p Projectile) ProjectileSnapshot {
	b := p.base()
	paint := p.PaintPosition(w.ships)
	return ProjectileSnapshot{
		Kind:        p.Kind(),
		ID:          b.id,
		State:       b.state,
		Power:       b.power,
		X:           b.x,
		Y:           b.y,
		PaintX:      paint.X,
		PaintY:      paint.Y,
		Frame:       b.frame,
		OwnerIndex:  b.owner,
		VictimIndex: b.victim,
		Heading:     b.heading,
	}
}

// EncodeSnapshot serializes a snapshot for the wire and the recorder
func EncodeSnapshot(s TurnSnapshot) ([]byte, error) {
	return msgpack.Marshal(&s)
}

// DecodeSnapshot parses a recorded snapshot
func DecodeSnapshot(data []byte) (TurnSnapshot, error) {
	var s TurnSnapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return TurnSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
