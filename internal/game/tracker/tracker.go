// Package tracker turns the stream of host TICK payloads into reconstructed game states.
//
// It owns the only two live snapshots (current and previous) together with the hidden
// per-slot table and the event detector, and runs them in a fixed order: ingest, hidden
// state, events.
package tracker

import (
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/events"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/hidden"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/ingest"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

type Tracker struct {
	table  hidden.Table
	events *events.Detector

	cur, prev       model.GameState
	hasCur, hasPrev bool
}

func New(tickSkip int) *Tracker {
	return &Tracker{events: events.New(tickSkip)}
}

// Reset drops both snapshots and all hidden state, as if no tick had been seen.
func (t *Tracker) Reset() {
	t.table = hidden.Table{}
	t.events.Reset()
	t.cur, t.prev = model.GameState{}, model.GameState{}
	t.hasCur, t.hasPrev = false, false
}

// Update reconstructs the state for msg. dt is the time since the previous update.
// localCmd is the command the host applied to the player at localIndex for this tick.
//
// The returned state stays valid until the next call.
func (t *Tracker) Update(msg *protocol.TickMsg, dt float32, localIndex int, localCmd model.Action) *model.GameState {
	f := ingest.FromTick(msg, dt)

	var prev *model.GameState
	if t.hasCur {
		t.prev = t.cur
		t.hasPrev = true
		prev = &t.prev
	}
	t.cur = f.State
	t.hasCur = true
	cur := &t.cur

	for i := range cur.Players {
		p := &cur.Players[i]
		if i == localIndex {
			p.PrevAction = localCmd
			continue
		}
		var link *model.Player
		if prev != nil {
			link = prev.LinkedPlayer(i, p.CarID)
		}
		p.PrevAction = InferAction(p, link)
	}

	t.table.Update(cur, prev)
	t.events.Apply(cur, events.Input{CurTime: f.CurTime, Touch: f.Touch, Scores: f.Scores})
	return cur
}

// Previous is the snapshot before the current one, or nil.
func (t *Tracker) Previous() *model.GameState {
	if !t.hasPrev {
		return nil
	}
	return &t.prev
}

// Slot exposes the hidden record of slot i.
func (t *Tracker) Slot(i int) *hidden.Slot { return t.table.Slot(i) }

// InferAction estimates the command another car's driver applied, given its current and
// linked previous snapshot. Only boost is observable (the boost amount dropped); every
// other channel reads as neutral.
func InferAction(cur, prev *model.Player) model.Action {
	var a model.Action
	if prev != nil && !cur.IsDemoed && cur.Boost < prev.Boost {
		a.Boost = true
	}
	return a
}
