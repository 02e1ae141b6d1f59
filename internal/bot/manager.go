package bot

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/sirupsen/logrus"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

// Manager drives every bot of the process from one tick stream, in registration order.
// Bots share nothing; the manager only sequences them.
type Manager struct {
	bots *orderedmap.OrderedMap[int, *Bot]
	log  logrus.FieldLogger
}

func NewManager(log logrus.FieldLogger) *Manager {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Manager{bots: orderedmap.NewOrderedMap[int, *Bot](), log: log}
}

func (m *Manager) Add(b *Bot) error {
	if _, ok := m.bots.Get(b.Index()); ok {
		return fmt.Errorf("bot index %d already registered", b.Index())
	}
	m.bots.Set(b.Index(), b)
	return nil
}

func (m *Manager) Get(index int) (*Bot, bool) { return m.bots.Get(index) }

func (m *Manager) Len() int { return m.bots.Len() }

// Entries describes the registered bots for the HELLO handshake.
func (m *Manager) Entries() []protocol.BotEntry {
	out := make([]protocol.BotEntry, 0, m.bots.Len())
	for el := m.bots.Front(); el != nil; el = el.Next() {
		b := el.Value
		out = append(out, protocol.BotEntry{Index: b.Index(), Team: int(b.Team()), Name: b.Name()})
	}
	return out
}

// Retain drops every bot whose index is not in keep. It returns the dropped indexes.
func (m *Manager) Retain(keep []int) []int {
	want := make(map[int]bool, len(keep))
	for _, i := range keep {
		want[i] = true
	}
	var dropped []int
	for _, i := range m.bots.Keys() {
		if !want[i] {
			m.bots.Delete(i)
			dropped = append(dropped, i)
			m.log.WithField("index", i).Warn("bot not accepted by host; dropped")
		}
	}
	return dropped
}

// Tick runs every bot on msg. The first bot error aborts the tick.
func (m *Manager) Tick(msg *protocol.TickMsg) ([]Output, error) {
	outs := make([]Output, 0, m.bots.Len())
	for el := m.bots.Front(); el != nil; el = el.Next() {
		out, err := el.Value.Step(msg)
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}
