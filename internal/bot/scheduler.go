package bot

import (
	"github.com/chewxy/math32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

// Scheduler decides when the policy is consulted and when its answer reaches the
// controller. A decision fires each time the tick counter reaches tickSkip; the decided
// action is committed once actionDelay ticks have passed since that decision.
type Scheduler struct {
	tickSkip    int
	actionDelay int

	initialized bool
	lastTime    float32
	counter     int

	pending       model.Action
	hasPending    bool
	sinceDecision int
	forceCommit   bool

	committed model.Action
}

func NewScheduler(tickSkip, actionDelay int) *Scheduler {
	return &Scheduler{tickSkip: tickSkip, actionDelay: actionDelay}
}

// Advance is the result of feeding one host clock reading to the scheduler.
type Advance struct {
	// Ticks is the number of raw ticks elapsed since the previous reading.
	Ticks int
	// DT is the elapsed time in seconds.
	DT float32
	// Duplicate marks a poll inside the same host tick; nothing else should run.
	Duplicate bool
	// Fresh marks the first reading after construction or after the host clock went back.
	Fresh bool
}

// Advance registers the host clock now.
func (s *Scheduler) Advance(now float32) Advance {
	if s.initialized {
		dt := now - s.lastTime
		ticks := int(math32.Round(dt * rlconst.TickRate))
		switch {
		case ticks == 0:
			return Advance{Duplicate: true}
		case ticks > 0:
			s.lastTime = now
			s.counter += ticks
			if s.hasPending {
				s.sinceDecision += ticks
			}
			return Advance{Ticks: ticks, DT: dt}
		}
		// Host clock rewound: start over.
	}

	*s = Scheduler{tickSkip: s.tickSkip, actionDelay: s.actionDelay}
	s.initialized = true
	s.lastTime = now
	s.counter = s.tickSkip
	s.forceCommit = true
	return Advance{Ticks: s.tickSkip, DT: float32(s.tickSkip) * rlconst.TickTime, Fresh: true}
}

// CommitDue moves the pending action into the committed slot once its delay has passed.
// It reports whether a commit happened.
func (s *Scheduler) CommitDue() bool {
	if !s.hasPending {
		return false
	}
	if !s.forceCommit && s.sinceDecision < s.actionDelay {
		return false
	}
	s.committed = s.pending
	s.hasPending = false
	s.forceCommit = false
	return true
}

// DecisionDue reports whether the policy must be consulted now, wrapping the counter.
func (s *Scheduler) DecisionDue() bool {
	if s.counter < s.tickSkip {
		return false
	}
	s.counter %= s.tickSkip
	return true
}

// Decide records a fresh policy action and restarts the delay.
func (s *Scheduler) Decide(a model.Action) {
	s.pending = a
	s.hasPending = true
	s.sinceDecision = 0
}

// Committed is the command currently applied to the car.
func (s *Scheduler) Committed() model.Action { return s.committed }

// Pending returns the decided but not yet committed action, if any.
func (s *Scheduler) Pending() (model.Action, bool) { return s.pending, s.hasPending }
