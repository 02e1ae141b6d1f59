package bot

import (
	"testing"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

func at(frame int) float32 { return float32(frame) / rlconst.TickRate }

// drive runs the scheduler one tick at a time and returns, per frame, whether a decision
// fired and which decision number is committed afterwards.
func drive(s *Scheduler, frames int) (decided []bool, committed []float32) {
	n := float32(0)
	for f := 0; f <= frames; f++ {
		adv := s.Advance(at(f))
		if adv.Duplicate {
			panic("unexpected duplicate")
		}
		s.CommitDue()
		d := s.DecisionDue()
		if d {
			n++
			s.Decide(model.Action{Throttle: n})
			s.CommitDue()
		}
		decided = append(decided, d)
		committed = append(committed, s.Committed().Throttle)
	}
	return decided, committed
}

func TestSchedulerCadenceAndDelay(t *testing.T) {
	decided, committed := drive(NewScheduler(8, 7), 32)

	for f, d := range decided {
		want := f%8 == 0
		if d != want {
			t.Fatalf("frame %d: decided=%v want %v", f, d, want)
		}
	}
	checks := []struct {
		frame int
		want  float32
	}{
		{0, 1},  // first call commits immediately
		{8, 1},  // decision 2 made, not applied
		{14, 1}, // six ticks after the decision
		{15, 2}, // seven ticks after the decision
		{16, 2},
		{22, 2},
		{23, 3},
		{31, 4},
	}
	for _, c := range checks {
		if committed[c.frame] != c.want {
			t.Fatalf("frame %d: committed decision %v want %v", c.frame, committed[c.frame], c.want)
		}
	}
}

func TestSchedulerDelayEqualsTickSkip(t *testing.T) {
	_, committed := drive(NewScheduler(8, 8), 24)
	if committed[15] != 1 || committed[16] != 2 || committed[24] != 3 {
		t.Fatalf("delay==tick_skip: frame15=%v frame16=%v frame24=%v", committed[15], committed[16], committed[24])
	}
}

func TestSchedulerZeroDelay(t *testing.T) {
	_, committed := drive(NewScheduler(4, 0), 8)
	if committed[3] != 1 || committed[4] != 2 || committed[8] != 3 {
		t.Fatalf("zero delay should commit on the decision tick: %v", committed)
	}
}

func TestSchedulerFirstAdvance(t *testing.T) {
	s := NewScheduler(8, 7)
	adv := s.Advance(12.5)
	if !adv.Fresh || adv.Ticks != 8 || adv.DT != 8*rlconst.TickTime {
		t.Fatalf("first advance: %+v", adv)
	}
	if !s.DecisionDue() {
		t.Fatalf("first advance must force a decision")
	}
}

func TestSchedulerDuplicatePoll(t *testing.T) {
	s := NewScheduler(8, 7)
	s.Advance(at(10))
	s.DecisionDue()
	s.Decide(model.Action{Steer: 1})
	s.CommitDue()

	before := *s
	adv := s.Advance(at(10) + 0.001)
	if !adv.Duplicate {
		t.Fatalf("sub-tick poll should be a duplicate: %+v", adv)
	}
	if *s != before {
		t.Fatalf("duplicate poll changed scheduler state")
	}
}

func TestSchedulerMultiTickJump(t *testing.T) {
	s := NewScheduler(8, 7)
	s.Advance(at(0))
	s.DecisionDue()
	s.Decide(model.Action{Throttle: 1})
	s.CommitDue()

	adv := s.Advance(at(20))
	if adv.Ticks != 20 {
		t.Fatalf("ticks=%d", adv.Ticks)
	}
	if !s.DecisionDue() || s.DecisionDue() {
		t.Fatalf("a long gap yields a single decision")
	}
	s.Decide(model.Action{Throttle: 2})
	if s.CommitDue() {
		t.Fatalf("new decision must still wait for its delay")
	}
	s.Advance(at(23))
	s.CommitDue()
	if s.DecisionDue() {
		t.Fatalf("counter should have wrapped to 4, then 7")
	}
	s.Advance(at(27))
	if !s.CommitDue() || s.Committed().Throttle != 2 {
		t.Fatalf("decision should commit seven ticks later")
	}
}

func TestSchedulerClockRewind(t *testing.T) {
	s := NewScheduler(8, 7)
	s.Advance(at(100))
	s.DecisionDue()
	s.Decide(model.Action{Throttle: 1})
	s.CommitDue()
	s.Advance(at(105))

	adv := s.Advance(at(3))
	if !adv.Fresh || adv.Ticks != 8 {
		t.Fatalf("rewound clock should restart: %+v", adv)
	}
	if _, ok := s.Pending(); ok {
		t.Fatalf("restart must drop pending actions")
	}
	if !s.DecisionDue() {
		t.Fatalf("restart must force a decision")
	}
	s.Decide(model.Action{Throttle: 9})
	if !s.CommitDue() || s.Committed().Throttle != 9 {
		t.Fatalf("restart decision should commit immediately")
	}
}
