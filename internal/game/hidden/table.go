package hidden

import (
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/rlconst"
)

// Table holds one Slot per player index. It is owned by a single bot and only touched on
// that bot's invocation path.
type Table struct {
	slots [model.MaxPlayers]Slot
}

// Slot returns the record for index i, or nil when i is out of range or never observed.
func (t *Table) Slot(i int) *Slot {
	if i < 0 || i >= len(t.slots) || !t.slots[i].seen {
		return nil
	}
	return &t.slots[i]
}

// Update advances every player of cur by one invocation and writes the derived fields
// back into cur.Players. prev is the previous reconstructed state (nil on the first tick).
// Each player's PrevAction must already hold the command that produced this tick.
func (t *Table) Update(cur, prev *model.GameState) {
	for i := range cur.Players {
		p := &cur.Players[i]
		if i >= len(t.slots) {
			continue
		}
		s := &t.slots[i]
		s.bind(p.CarID)

		var link *model.Player
		if prev != nil {
			link = prev.LinkedPlayer(i, p.CarID)
		}
		s.step(stepInput{
			cur:      p,
			prev:     link,
			controls: p.PrevAction,
			dt:       cur.DeltaTime,
			tick:     cur.LastTickCount,
		})
	}

	t.detectContacts(cur)

	for i := range cur.Players {
		if i < len(t.slots) {
			t.slots[i].apply(&cur.Players[i])
		}
	}
}

// detectContacts records car-to-car contact from proximity, since the feed carries no
// bump events. A car in cooldown keeps its current partner.
func (t *Table) detectContacts(cur *model.GameState) {
	n := len(cur.Players)
	if n > len(t.slots) {
		n = len(t.slots)
	}
	for i := 0; i < n; i++ {
		a := &cur.Players[i]
		if a.IsDemoed {
			continue
		}
		for j := i + 1; j < n; j++ {
			b := &cur.Players[j]
			if b.IsDemoed || a.Pos.Sub(b.Pos).Len() >= rlconst.CarContactDist {
				continue
			}
			t.slots[i].touchCar(b.CarID)
			t.slots[j].touchCar(a.CarID)
		}
	}
}

func (s *Slot) touchCar(other uint32) {
	if s.carContact.CooldownTimer > 0 {
		return
	}
	s.carContact = model.CarContact{OtherCarID: other, CooldownTimer: rlconst.BumpCooldownTime}
}
