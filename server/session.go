package main

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrBattleNotFound = errors.New("battle not found")
	ErrTooManyBattles = errors.New("too many active battles")
)

// BattleManager handles creation and lookup of battles
type BattleManager struct {
	mu       sync.RWMutex
	battles  map[string]*Battle
	cfg      Config
	db       *DB
	recorder *Recorder
}

// NewBattleManager creates a new BattleManager. db and rec may be nil.
func NewBattleManager(cfg Config, db *DB, rec *Recorder) *BattleManager {
	return &BattleManager{
		battles:  make(map[string]*Battle),
		cfg:      cfg,
		db:       db,
		recorder: rec,
	}
}

// Create opens a new battle lobby. A non-empty pass makes it private.
func (bm *BattleManager) Create(name, pass string) (*Battle, error) {
	hash := ""
	if pass != "" {
		h, err := HashPassphrase(pass)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if len(bm.battles) >= bm.cfg.MaxBattles {
		return nil, ErrTooManyBattles
	}

	id := uuid.NewString()
	if bm.db != nil {
		if err := bm.db.CreateBattle(id, name, hash != ""); err != nil {
			return nil, fmt.Errorf("create battle: %w", err)
		}
	}
	b := NewBattle(id, name, hash, bm.cfg, bm.db, bm.recorder)
	b.onFinish = func() { bm.Remove(id) }
	bm.battles[id] = b
	return b, nil
}

// Get returns a battle by ID
func (bm *BattleManager) Get(id string) (*Battle, error) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	b, ok := bm.battles[id]
	if !ok {
		return nil, ErrBattleNotFound
	}
	return b, nil
}

// Remove stops and forgets a battle
func (bm *BattleManager) Remove(id string) {
	bm.mu.Lock()
	b, ok := bm.battles[id]
	delete(bm.battles, id)
	bm.mu.Unlock()
	if ok {
		b.Stop()
	}
}

// Count returns the number of active battles
func (bm *BattleManager) Count() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	return len(bm.battles)
}

// List returns info about all active battles, ordered by name
func (bm *BattleManager) List() []BattleInfo {
	bm.mu.RLock()
	battles := make([]*Battle, 0, len(bm.battles))
	for _, b := range bm.battles {
		battles = append(battles, b)
	}
	bm.mu.RUnlock()

	list := make([]BattleInfo, 0, len(battles))
	for _, b := range battles {
		list = append(list, b.Info())
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}
