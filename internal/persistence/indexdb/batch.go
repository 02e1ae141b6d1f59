package indexdb

import (
	"database/sql"
	"time"
)

const (
	stmtTick = iota
	stmtDecision
)

var batchSQL = [...]string{
	stmtTick:     `INSERT OR REPLACE INTO ticks(frame,seconds,goal_scored,players,bots) VALUES(?,?,?,?,?)`,
	stmtDecision: `INSERT OR REPLACE INTO decisions(frame,bot_index,kind,action_json,digest) VALUES(?,?,?,?,?)`,
}

// batcher groups writer-goroutine inserts into transactions committed every maxOps rows
// or maxWait, whichever comes first. A failed insert rolls back its batch.
type batcher struct {
	db    *sql.DB
	stmts [len(batchSQL)]*sql.Stmt

	tx      *sql.Tx
	ops     int
	started time.Time

	maxOps  int
	maxWait time.Duration
}

func newBatcher(db *sql.DB) *batcher {
	b := &batcher{db: db, maxOps: 2000, maxWait: 2 * time.Second}
	for i, q := range batchSQL {
		b.stmts[i], _ = db.Prepare(q)
	}
	return b
}

func (b *batcher) exec(stmt int, args ...any) {
	if b.stmts[stmt] == nil {
		return
	}
	if b.tx == nil {
		tx, err := b.db.Begin()
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		b.tx, b.ops, b.started = tx, 0, time.Now()
	}
	if _, err := b.tx.Stmt(b.stmts[stmt]).Exec(args...); err != nil {
		_ = b.tx.Rollback()
		b.tx = nil
		return
	}
	b.ops++
	if b.ops >= b.maxOps || time.Since(b.started) >= b.maxWait {
		b.commit()
	}
}

func (b *batcher) commit() {
	if b.tx == nil {
		return
	}
	_ = b.tx.Commit()
	b.tx = nil
}

func (b *batcher) close() {
	b.commit()
	for _, st := range b.stmts {
		if st != nil {
			_ = st.Close()
		}
	}
}
