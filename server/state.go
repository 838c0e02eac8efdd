package main

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownState is returned when decoding a projectile state value that
// does not exist.
var ErrUnknownState = errors.New("unknown projectile state")

// ProjectileState is the lifecycle stage of a bullet or missile
type ProjectileState int8

const (
	StateFired ProjectileState = iota
	StateMoving
	StateHitVictim
	StateHitProjectile
	StateHitWall
	StateArrived   // missile only
	StateExploding // missile only
	StateExploded  // missile only
	StateInactive
)

var stateNames = [...]string{
	StateFired:         "fired",
	StateMoving:        "moving",
	StateHitVictim:     "hit_victim",
	StateHitProjectile: "hit_projectile",
	StateHitWall:       "hit_wall",
	StateArrived:       "arrived",
	StateExploding:     "exploding",
	StateExploded:      "exploded",
	StateInactive:      "inactive",
}

// IsActive is true only while the projectile is in flight
func (s ProjectileState) IsActive() bool {
	return s == StateFired || s == StateMoving
}

func (s ProjectileState) valid() bool {
	return s >= StateFired && s <= StateInactive
}

func (s ProjectileState) String() string {
	if !s.valid() {
		return fmt.Sprintf("ProjectileState(%d)", int8(s))
	}
	return stateNames[s]
}

// ToProjectileState converts a serialized integer into a state
func ToProjectileState(v int) (ProjectileState, error) {
	s := ProjectileState(v)
	if v < int(StateFired) || v > int(StateInactive) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownState, v)
	}
	return s, nil
}

// ParseProjectileState converts a state name into a state
func ParseProjectileState(name string) (ProjectileState, error) {
	for i, n := range stateNames {
		if n == name {
			return ProjectileState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

func (s ProjectileState) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int8(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *ProjectileState) UnmarshalText(text []byte) error {
	v, err := ParseProjectileState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

var (
	_ msgpack.CustomEncoder = ProjectileState(0)
	_ msgpack.CustomDecoder = (*ProjectileState)(nil)
)

// EncodeMsgpack writes the state as a small integer
func (s ProjectileState) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !s.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownState, int8(s))
	}
	return enc.EncodeInt8(int8(s))
}

// DecodeMsgpack rejects values outside the known states
func (s *ProjectileState) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeInt()
	if err != nil {
		return err
	}
	st, err := ToProjectileState(v)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
