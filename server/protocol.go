package main

import (
	"encoding/json"
	"slices"
)

// Client -> Server message types
const (
	MsgList     = "list"
	MsgCreate   = "create"
	MsgJoin     = "join"
	MsgResume   = "resume" // reclaim a seat with a token
	MsgStart    = "start"
	MsgCommand  = "cmd"
	MsgSpectate = "spectate"
	MsgLeave    = "leave"
)

// Server -> Client message types
const (
	MsgBattles  = "battles"
	MsgCreated  = "created"
	MsgJoined   = "joined"
	MsgStarted  = "started"
	MsgWatching = "watching"
	MsgAck      = "ack"
	MsgEvents   = "events"
	MsgState    = "state" // only used by tests; snapshots travel as binary frames
	MsgOver     = "over"
	MsgError    = "error"
)

// Command operations
const (
	OpFire     = "fire"
	OpLaunch   = "launch"
	OpDetonate = "detonate"
	OpSteer    = "steer"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// CreateMsg asks for a new battle. A non-empty Pass makes it private.
type CreateMsg struct {
	Name string `json:"bname"`
	Pass string `json:"pass,omitempty"`
}

// JoinMsg takes a seat in a battle
type JoinMsg struct {
	BattleID string `json:"bid"`
	Name     string `json:"name"`
	Team     string `json:"team,omitempty"`
	Pass     string `json:"pass,omitempty"`
}

// ResumeMsg reclaims a seat after a reconnect
type ResumeMsg struct {
	Token string `json:"token"`
}

// SpectateMsg subscribes to a battle's snapshots
type SpectateMsg struct {
	BattleID string `json:"bid"`
}

// CommandMsg is a ship order
type CommandMsg struct {
	Op       string  `json:"op"`
	Power    float64 `json:"power,omitempty"`
	Heading  float64 `json:"heading,omitempty"`
	ID       int     `json:"id,omitempty"`
	Velocity float64 `json:"velocity,omitempty"`
	TurnRate float64 `json:"turn,omitempty"`
}

// BattleInfo is used in the battle list
type BattleInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Ships   int    `json:"ships"`
	Turn    int    `json:"turn"`
	Running bool   `json:"running"`
	Private bool   `json:"private,omitempty"`
}

// JoinedMsg confirms a seat. Token lets the client resume it.
type JoinedMsg struct {
	BattleID string `json:"bid"`
	Ship     int    `json:"ship"`
	Token    string `json:"token"`
}

// AckMsg returns the id assigned to a fired projectile
type AckMsg struct {
	Op string `json:"op"`
	ID int    `json:"id"`
}

// EventMsg is one ship event tagged with its type
type EventMsg struct {
	T string `json:"t"`
	D Event  `json:"d"`
}

// EventsMsg carries a ship's events and projectile status for one turn
type EventsMsg struct {
	Turn   int                `json:"turn"`
	Events []EventMsg         `json:"events,omitempty"`
	Status []ProjectileStatus `json:"status,omitempty"`
	Energy float64            `json:"energy"`
}

// ShipResult is a ship's final standing
type ShipResult struct {
	Index         int     `json:"i"`
	Name          string  `json:"name"`
	Team          string  `json:"team,omitempty"`
	Score         float64 `json:"score"`
	BulletDamage  float64 `json:"bd"`
	MissileDamage float64 `json:"md"`
	Kills         int     `json:"kills"`
	Survived      bool    `json:"survived"`
}

// OverMsg ends a battle
type OverMsg struct {
	BattleID string       `json:"bid"`
	Turn     int          `json:"turn"`
	Winner   string       `json:"winner,omitempty"`
	Results  []ShipResult `json:"results"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

func newEventsMsg(turn int, s *Ship) EventsMsg {
	evts := s.DrainEvents()
	msg := EventsMsg{Turn: turn, Status: slices.Clone(s.Status()), Energy: s.Energy}
	for _, e := range evts {
		msg.Events = append(msg.Events, EventMsg{T: e.EventType(), D: e})
	}
	return msg
}
