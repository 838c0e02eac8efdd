package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	recorderQueueSize = 1024
	recorderBatchSize = 50
)

// recorderFlushEvery is a variable so tests can shorten it
var recorderFlushEvery = time.Second

// frameRow is one encoded turn waiting to be written
type frameRow struct {
	BattleID string
	Turn     int
	Data     []byte
}

// Recorder persists encoded snapshots with batched background writes
type Recorder struct {
	db     *DB
	log    zerolog.Logger
	frames chan frameRow
	stop   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	dropped int
	written int
}

// NewRecorder creates and starts the background writer
func NewRecorder(db *DB) *Recorder {
	r := &Recorder{
		db:     db,
		log:    Logger.With().Str("component", "recorder").Logger(),
		frames: make(chan frameRow, recorderQueueSize),
		stop:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.writer()
	return r
}

// Record enqueues a frame (non-blocking)
func (r *Recorder) Record(battleID string, turn int, data []byte) {
	select {
	case r.frames <- frameRow{BattleID: battleID, Turn: turn, Data: data}:
	default:
		// Queue full, drop the frame rather than stall the battle loop
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
	}
}

// Counts returns how many frames were written and dropped so far
func (r *Recorder) Counts() (written, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written, r.dropped
}

// Stop flushes pending frames and shuts the writer down
func (r *Recorder) Stop() {
	close(r.stop)
	r.wg.Wait()
}

func (r *Recorder) writer() {
	defer r.wg.Done()

	batch := make([]frameRow, 0, recorderBatchSize)
	ticker := time.NewTicker(recorderFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case f := <-r.frames:
			batch = append(batch, f)
			if len(batch) >= recorderBatchSize {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-r.stop:
		drain:
			for {
				select {
				case f := <-r.frames:
					batch = append(batch, f)
				default:
					break drain
				}
			}
			if len(batch) > 0 {
				r.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch of frames in one transaction
func (r *Recorder) flush(frames []frameRow) {
	if r.db == nil || len(frames) == 0 {
		return
	}
	tx, err := r.db.conn.Begin()
	if err != nil {
		r.log.Error().Err(err).Msg("begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO frames (battle_id, turn, data) VALUES (?, ?, ?)`)
	if err != nil {
		r.log.Error().Err(err).Msg("prepare")
		return
	}
	defer stmt.Close()

	n := 0
	for _, f := range frames {
		if _, err := stmt.Exec(f.BattleID, f.Turn, f.Data); err != nil {
			r.log.Error().Err(err).Str("battle", f.BattleID).Int("turn", f.Turn).Msg("insert frame")
			continue
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		r.log.Error().Err(err).Msg("commit")
		return
	}
	r.mu.Lock()
	r.written += n
	r.mu.Unlock()
}
