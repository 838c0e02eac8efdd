package main

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrBattleFull      = errors.New("battle full")
	ErrBattleStarted   = errors.New("battle already started")
	ErrNotEnoughShips  = errors.New("at least two ships are needed")
	ErrShipUnavailable = errors.New("ship is not available")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrNotEnoughEnergy = errors.New("not enough energy")
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Battle runs one World in real time and fans its output out to clients
type Battle struct {
	ID       string
	Name     string
	passHash string

	tick     time.Duration
	maxTurns int
	maxShips int

	mu          sync.Mutex
	world       *World
	controllers map[int]Broadcaster
	spectators  map[Broadcaster]bool
	running     bool
	finished    bool
	results     []ShipResult

	db       *DB
	recorder *Recorder
	log      zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	onFinish func()
}

// NewBattle creates a battle in the lobby state. db and rec may be nil.
func NewBattle(id, name, passHash string, cfg Config, db *DB, rec *Recorder) *Battle {
	log := Logger.With().Str("battle", id).Logger()
	world := NewWorld(cfg.Rules)
	world.SetLogger(log)
	return &Battle{
		ID:          id,
		Name:        name,
		passHash:    passHash,
		tick:        cfg.TickDuration(),
		maxTurns:    cfg.MaxTurns,
		maxShips:    cfg.MaxShipsPerBattle,
		world:       world,
		controllers: make(map[int]Broadcaster),
		spectators:  make(map[Broadcaster]bool),
		db:          db,
		recorder:    rec,
		log:         log,
		stop:        make(chan struct{}),
	}
}

// Private reports whether joining needs a passphrase
func (b *Battle) Private() bool {
	return b.passHash != ""
}

// spawnPoint places ship i on a ring around the field center, facing it
func spawnPoint(r Rules, i, total int) (x, y, heading float64) {
	cx, cy := r.FieldWidth/2, r.FieldHeight/2
	radius := math.Min(r.FieldWidth-r.ShipWidth, r.FieldHeight-r.ShipHeight) / 2 * 0.8
	a := 2 * math.Pi * float64(i) / float64(total)
	x = Clamp(cx+radius*math.Sin(a), r.ShipWidth/2, r.FieldWidth-r.ShipWidth/2)
	y = Clamp(cy+radius*math.Cos(a), r.ShipHeight/2, r.FieldHeight-r.ShipHeight/2)
	heading = NormalizeAngle(a + math.Pi)
	return
}

// AddShip seats a new ship while the battle is in the lobby
func (b *Battle) AddShip(name, team string) (*Ship, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running || b.finished {
		return nil, ErrBattleStarted
	}
	n := len(b.world.Ships())
	if n >= b.maxShips {
		return nil, ErrBattleFull
	}
	x, y, h := spawnPoint(b.world.Rules(), n, b.maxShips)
	return b.world.AddShip(name, team, x, y, h), nil
}

// ShipCount returns the number of seated ships
func (b *Battle) ShipCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.world.Ships())
}

// SetController routes a ship's events to c
func (b *Battle) SetController(ship int, c Broadcaster) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.world.Ship(ship) == nil {
		return ErrShipUnavailable
	}
	b.controllers[ship] = c
	return nil
}

// RemoveController detaches c from ship and returns the number of
// controllers left.
func (b *Battle) RemoveController(ship int, c Broadcaster) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.controllers[ship] == c {
		delete(b.controllers, ship)
	}
	return len(b.controllers)
}

func (b *Battle) AddSpectator(c Broadcaster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spectators[c] = true
}

func (b *Battle) RemoveSpectator(c Broadcaster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.spectators, c)
}

// Start begins ticking in the background
func (b *Battle) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return ErrBattleStarted
	}
	if b.running {
		return nil
	}
	if len(b.world.Ships()) < 2 {
		return ErrNotEnoughShips
	}
	b.running = true
	b.log.Info().Int("ships", len(b.world.Ships())).Msg("battle started")
	for _, c := range b.allClients() {
		c.SendJSON(Envelope{T: MsgStarted, Data: map[string]string{"bid": b.ID}})
	}
	go b.Run()
	return nil
}

// Run is the battle loop
func (b *Battle) Run() {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if b.step() {
				b.Stop()
				if b.onFinish != nil {
					b.onFinish()
				}
				return
			}
		case <-b.stop:
			return
		}
	}
}

// Stop terminates the battle loop
func (b *Battle) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// Command applies a controller order to its ship and returns the id of a
// fired projectile, if any. Shots the ship cannot pay for, counting the
// orders already queued this turn, are refused so every returned id spawns.
func (b *Battle) Command(ship int, cmd CommandMsg) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.world.Ship(ship)
	if s == nil || !s.Alive || b.finished {
		return 0, ErrShipUnavailable
	}
	rules := b.world.Rules()
	switch cmd.Op {
	case OpFire:
		cost := rules.BulletEnergyCost(rules.ClampBulletPower(cmd.Power))
		if s.Energy-s.queuedCost(rules) < cost {
			return 0, ErrNotEnoughEnergy
		}
		return s.Fire(cmd.Power, cmd.Heading), nil
	case OpLaunch:
		cost := rules.MissileEnergyCost(rules.ClampMissilePower(cmd.Power))
		if s.Energy-s.queuedCost(rules) < cost {
			return 0, ErrNotEnoughEnergy
		}
		return s.Launch(cmd.Power, cmd.Heading), nil
	case OpDetonate:
		s.Detonate(cmd.ID)
		return cmd.ID, nil
	case OpSteer:
		s.Steer(cmd.Velocity, cmd.TurnRate)
		return 0, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
}

// step runs one turn and reports whether the battle is over. Results are
// written to the database after the lock is released.
func (b *Battle) step() bool {
	b.mu.Lock()
	over, final := b.advance()
	b.mu.Unlock()

	if final != nil {
		b.saveResults(*final)
	}
	return over
}

func (b *Battle) advance() (bool, *battleRecord) {
	if b.finished {
		return true, nil
	}
	snap := b.world.Step()

	for _, s := range b.world.Ships() {
		msg := newEventsMsg(snap.Turn, s)
		if c, ok := b.controllers[s.Index]; ok {
			c.SendJSON(Envelope{T: MsgEvents, Data: msg})
		}
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		b.log.Error().Err(err).Int("turn", snap.Turn).Msg("encode snapshot")
	} else {
		for _, c := range b.allClients() {
			c.SendBinary(data)
		}
		if b.recorder != nil {
			b.recorder.Record(b.ID, snap.Turn, data)
		}
	}

	if b.world.Decided() || (b.maxTurns > 0 && snap.Turn >= b.maxTurns) {
		final := b.finish()
		return true, &final
	}
	return false, nil
}

// allClients returns controllers and spectators, each once
func (b *Battle) allClients() []Broadcaster {
	out := make([]Broadcaster, 0, len(b.controllers)+len(b.spectators))
	seen := make(map[Broadcaster]bool, cap(out))
	idx := make([]int, 0, len(b.controllers))
	for i := range b.controllers {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	for _, i := range idx {
		c := b.controllers[i]
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for c := range b.spectators {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// battleRecord is what gets persisted when a battle ends
type battleRecord struct {
	turn    int
	winner  string
	results []ShipResult
}

func (b *Battle) saveResults(r battleRecord) {
	if b.db == nil {
		return
	}
	if err := b.db.FinishBattle(b.ID, r.turn, r.winner, r.results); err != nil {
		b.log.Error().Err(err).Msg("save results")
	}
}

// finish marks the battle over and notifies clients. The caller holds b.mu.
func (b *Battle) finish() battleRecord {
	b.finished = true
	b.running = false
	b.results = b.standings()

	winner := ""
	for _, r := range b.results {
		if r.Survived {
			winner = r.Name
			if r.Team != "" {
				winner = r.Team
			}
			break
		}
	}
	turn := b.world.Turn()
	b.log.Info().Int("turn", turn).Str("winner", winner).Msg("battle over")

	over := Envelope{T: MsgOver, Data: OverMsg{BattleID: b.ID, Turn: turn, Winner: winner, Results: b.results}}
	for _, c := range b.allClients() {
		c.SendJSON(over)
	}
	return battleRecord{turn: turn, winner: winner, results: slices.Clone(b.results)}
}

// standings ranks ships by score, survivors first on ties
func (b *Battle) standings() []ShipResult {
	ships := b.world.Ships()
	out := make([]ShipResult, 0, len(ships))
	for _, s := range ships {
		out = append(out, ShipResult{
			Index:         s.Index,
			Name:          s.Name,
			Team:          s.Team,
			Score:         s.Stats.Total(),
			BulletDamage:  s.Stats.BulletDamage,
			MissileDamage: s.Stats.MissileDamage,
			Kills:         s.Stats.Kills,
			Survived:      s.Alive,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Survived != out[j].Survived {
			return out[i].Survived
		}
		return out[i].Score > out[j].Score
	})
	return out
}

// Results returns the final standings once the battle is over
func (b *Battle) Results() []ShipResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results
}

// Info summarises the battle for listings
func (b *Battle) Info() BattleInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BattleInfo{
		ID:      b.ID,
		Name:    b.Name,
		Ships:   len(b.world.Ships()),
		Turn:    b.world.Turn(),
		Running: b.running,
		Private: b.Private(),
	}
}
