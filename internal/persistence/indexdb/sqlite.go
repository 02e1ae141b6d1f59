package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
)

// SQLiteIndex is a queryable read-model of a bot session. Writes are queued to a single
// writer goroutine and dropped when the queue is full; the tick recording stays the
// source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropDecision atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqDecision
)

type req struct {
	kind     reqKind
	tick     TickRow
	decision DecisionRow
}

type TickRow struct {
	Frame      uint64
	Seconds    float32
	GoalScored bool
	Players    int
	Bots       int
}

// Decision kinds.
const (
	KindDecide = "decide"
	KindCommit = "commit"
)

type DecisionRow struct {
	Frame    uint64
	BotIndex int
	Kind     string
	Action   model.Action
	Digest   string
}

type Stats struct {
	DropTickTotal     uint64
	DropDecisionTotal uint64
	QueueDepth        int
	QueueCapacity     int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS config (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			frame INTEGER PRIMARY KEY,
			seconds REAL NOT NULL,
			goal_scored INTEGER NOT NULL,
			players INTEGER NOT NULL,
			bots INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			frame INTEGER NOT NULL,
			bot_index INTEGER NOT NULL,
			kind TEXT NOT NULL,
			action_json TEXT NOT NULL,
			digest TEXT NOT NULL,
			PRIMARY KEY (frame, bot_index, kind)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_bot_frame ON decisions(bot_index, frame);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropTickTotal:     s.dropTick.Load(),
		DropDecisionTotal: s.dropDecision.Load(),
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
	}
}

// UpsertConfig stores the effective configuration and the checkpoint it runs with.
func (s *SQLiteIndex) UpsertConfig(cfg config.Bot, checkpoint string) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('checkpoint',?)`, checkpoint); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO config(name,digest,json,updated_at) VALUES('bot',?,?,?)`,
		hex.EncodeToString(sum[:]), string(b), now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteIndex) WriteTick(row TickRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqTick, tick: row}:
	default:
		s.dropTick.Add(1)
	}
}

func (s *SQLiteIndex) WriteDecision(row DecisionRow) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqDecision, decision: row}:
	default:
		s.dropDecision.Add(1)
	}
}

func (s *SQLiteIndex) loop() {
	b := newBatcher(s.db)
	defer b.close()
	for r := range s.ch {
		switch r.kind {
		case reqTick:
			t := r.tick
			b.exec(stmtTick, int64(t.Frame), t.Seconds, t.GoalScored, t.Players, t.Bots)
		case reqDecision:
			d := r.decision
			act, _ := json.Marshal(d.Action)
			b.exec(stmtDecision, int64(d.Frame), d.BotIndex, d.Kind, string(act), d.Digest)
		}
	}
}
