// Package events derives discrete ball-touch and goal events from consecutive feed reads.
package events

import (
	"github.com/chewxy/math32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

type hitRecord struct {
	carID    uint32
	recorded bool
	info     model.BallHitInfo
}

// Detector is owned by a single bot. Its zero value is not usable; see New.
type Detector struct {
	tickSkip int

	primed bool
	scores [2]int

	lastTouchCarID uint32
	hits           [model.MaxPlayers]hitRecord
}

func New(tickSkip int) *Detector {
	return &Detector{tickSkip: tickSkip}
}

// Reset forgets scores, the last toucher and every hit record.
func (d *Detector) Reset() {
	*d = Detector{tickSkip: d.tickSkip}
}

// Input is the event-relevant part of one feed read.
type Input struct {
	// CurTime is the host clock at this read.
	CurTime float32
	Touch   *model.Touch
	Scores  [2]int
}

// Apply annotates gs with this tick's touch flags, hit info, last toucher and goal flag.
// gs.DeltaTime, gs.LastTickCount, gs.Ball and gs.Players must already be filled.
func (d *Detector) Apply(gs *model.GameState, in Input) {
	for i := range gs.Players {
		gs.Players[i].BallTouchedStep = false
		gs.Players[i].BallTouchedTick = false
	}

	if t := in.Touch; t != nil && t.PlayerIndex >= 0 && t.PlayerIndex < len(gs.Players) {
		p := &gs.Players[t.PlayerIndex]
		elapsed := math32.Max(0, in.CurTime-t.GameSeconds)

		if elapsed < float32(d.tickSkip)*rlconst.TickTime+rlconst.TouchEpsilon {
			p.BallTouchedStep = true
			d.lastTouchCarID = p.CarID
		}
		if elapsed < gs.DeltaTime+rlconst.TouchEpsilon {
			p.BallTouchedTick = true
		}
		d.recordHit(gs, p, t, elapsed)
	}

	for i := range gs.Players {
		if i < len(d.hits) {
			gs.Players[i].BallHitInfo = d.hitInfo(i, &gs.Players[i], gs.LastTickCount)
		}
	}
	gs.LastTouchCarID = d.lastTouchCarID
	gs.GoalScored = d.goal(in.Scores)
}

// recordHit stores hit detail for a touch newer than the slot's last recorded one.
func (d *Detector) recordHit(gs *model.GameState, p *model.Player, t *model.Touch, elapsed float32) {
	if p.Index < 0 || p.Index >= len(d.hits) {
		return
	}
	h := &d.hits[p.Index]
	if h.carID != p.CarID {
		*h = hitRecord{carID: p.CarID}
	}

	ago := uint64(math32.Round(elapsed * rlconst.TickRate))
	tick := uint64(0)
	if gs.LastTickCount > ago {
		tick = gs.LastTickCount - ago
	}
	if h.recorded && tick <= h.info.TickCountWhenHit {
		return
	}
	h.recorded = true
	h.info = model.BallHitInfo{
		IsValid:           true,
		RelativePosOnBall: t.Location.Sub(gs.Ball.Pos),
		BallPos:           gs.Ball.Pos,
		TickCountWhenHit:  tick,
	}
}

func (d *Detector) hitInfo(i int, p *model.Player, now uint64) model.BallHitInfo {
	h := &d.hits[i]
	if h.carID != p.CarID {
		*h = hitRecord{carID: p.CarID}
		return model.BallHitInfo{}
	}
	if h.info.IsValid && now > h.info.TickCountWhenHit+rlconst.BallHitInfoTimeoutTicks {
		h.info.IsValid = false
	}
	return h.info
}

// goal reports whether any team score rose since the previous read. The first read only
// primes the counters; a drop (new match) re-primes without signalling.
func (d *Detector) goal(scores [2]int) bool {
	if !d.primed {
		d.primed = true
		d.scores = scores
		return false
	}
	scored := false
	for team, s := range scores {
		if s < d.scores[team] {
			d.scores = scores
			return false
		}
		if s > d.scores[team] {
			scored = true
		}
	}
	d.scores = scores
	return scored
}

// LastTouchCarID is the car that made the most recent step touch, 0 if none.
func (d *Detector) LastTouchCarID() uint32 { return d.lastTouchCarID }
