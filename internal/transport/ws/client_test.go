package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/bot"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	tlog "github.com/Kuenec/GigaLearn-RLBot-Example/internal/persistence/log"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

type stepInferer struct {
	n   int
	err error
}

func (s *stepInferer) InferAction(*model.Player, *model.GameState, bool) (model.Action, error) {
	if s.err != nil {
		return model.Action{}, s.err
	}
	s.n++
	return model.Action{Throttle: 1, Steer: -1, Boost: s.n%2 == 1}, nil
}

func newManager(t *testing.T, inf bot.Inferer, indexes ...int) *bot.Manager {
	t.Helper()
	cfg := config.Defaults()
	cfg.Normalize()
	m := bot.NewManager(nil)
	for _, i := range indexes {
		b, err := bot.New(config.BotSpec{Index: i, Name: "b"}, cfg, inf, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Add(b); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func tickMsg(frame uint64) protocol.TickMsg {
	return protocol.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: protocol.Version,
		GameInfo:        protocol.GameInfo{FrameNum: frame, SecondsElapsed: float32(frame) / 120, IsRoundActive: true},
		Players: []protocol.PlayerInfo{
			{SpawnID: 11, Team: 0, Boost: 33, HasWheelContact: true},
			{SpawnID: 12, Team: 1, Boost: 33, HasWheelContact: true},
		},
		Teams: []protocol.TeamInfo{{TeamIndex: 0}, {TeamIndex: 1}},
	}
}

// fakeHost accepts bot 0 only, sends the given frames and collects every message the
// bot sends back after each frame.
func fakeHost(t *testing.T, frames []uint64, perTick int, got chan<- [][]byte) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var hello protocol.HelloMsg
		if err := conn.ReadJSON(&hello); err != nil || hello.Type != protocol.TypeHello || len(hello.Bots) != 2 {
			t.Errorf("bad HELLO: %+v err=%v", hello, err)
			return
		}
		_ = conn.WriteJSON(protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			TickRateHz:      120,
			NumPlayers:      2,
			Accepted:        []int{0},
		})

		var msgs [][]byte
		for _, f := range frames {
			if err := conn.WriteJSON(tickMsg(f)); err != nil {
				break
			}
			for i := 0; i < perTick; i++ {
				_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
				_, b, err := conn.ReadMessage()
				if err != nil {
					got <- msgs
					return
				}
				msgs = append(msgs, b)
			}
		}
		got <- msgs
	}))
}

func wsURL(srv *httptest.Server) string { return "ws" + strings.TrimPrefix(srv.URL, "http") }

func TestClientServesTicks(t *testing.T) {
	got := make(chan [][]byte, 1)
	srv := fakeHost(t, []uint64{0, 1, 1}, 1, got)
	defer srv.Close()

	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	rec := tlog.NewTickRecorder(dir)

	mgr := newManager(t, &stepInferer{}, 0, 3)
	c := NewClient(mgr, Options{URL: wsURL(srv), Validator: v, Sinks: []Sink{RecorderSink{Rec: rec}}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Run(ctx); err == nil {
		t.Fatalf("run should end when the host hangs up")
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	msgs := <-got
	if len(msgs) != 3 {
		t.Fatalf("controllers=%d want 3", len(msgs))
	}
	for i, b := range msgs {
		if err := v.Validate(protocol.TypeController, b); err != nil {
			t.Fatalf("controller %d invalid: %v", i, err)
		}
		var cm protocol.ControllerMsg
		if err := json.Unmarshal(b, &cm); err != nil {
			t.Fatal(err)
		}
		if cm.PlayerIndex != 0 || cm.Controller.Throttle != 1 || !cm.Controller.Boost {
			t.Fatalf("controller %d: %+v", i, cm)
		}
	}
	if mgr.Len() != 1 || c.Welcome().TickRateHz != 120 || c.Ticks() != 3 {
		t.Fatalf("manager=%d welcome=%+v ticks=%d", mgr.Len(), c.Welcome(), c.Ticks())
	}

	var frames []uint64
	if err := tlog.ReadTickRecords(dir, func(r tlog.TickRecord) error {
		frames = append(frames, r.Frame)
		if len(r.Outputs) != 1 || r.Outputs[0].Digest == "" {
			t.Fatalf("record outputs: %+v", r.Outputs)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 || frames[0] != 0 || frames[1] != 1 {
		t.Fatalf("recorded frames=%v (duplicate poll must be skipped)", frames)
	}
}

func TestClientReportsPolicyFailure(t *testing.T) {
	got := make(chan [][]byte, 1)
	srv := fakeHost(t, []uint64{0}, 1, got)
	defer srv.Close()

	boom := errors.New("boom")
	c := NewClient(newManager(t, &stepInferer{err: boom}, 0, 1), Options{URL: wsURL(srv)})
	err := c.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("run err=%v, want wrapped policy error", err)
	}

	msgs := <-got
	if len(msgs) != 1 {
		t.Fatalf("expected an ERROR message, got %d messages", len(msgs))
	}
	var e protocol.ErrorMsg
	if err := json.Unmarshal(msgs[0], &e); err != nil || e.Type != protocol.TypeError || e.Code != protocol.ErrPolicy {
		t.Fatalf("error msg=%+v err=%v", e, err)
	}
}

func TestClientStopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var hello protocol.HelloMsg
		_ = conn.ReadJSON(&hello)
		_ = conn.WriteJSON(protocol.WelcomeMsg{Type: protocol.TypeWelcome, ProtocolVersion: protocol.Version})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewClient(newManager(t, &stepInferer{}, 0), Options{URL: wsURL(srv)}).Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop on cancel")
	}
}

func TestClientRejectedHello(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var hello protocol.HelloMsg
		_ = conn.ReadJSON(&hello)
		_ = conn.WriteJSON(protocol.ErrorMsg{Type: protocol.TypeError, ProtocolVersion: protocol.Version, Code: protocol.ErrProtoVersion})
	}))
	defer srv.Close()

	err := NewClient(newManager(t, &stepInferer{}, 0), Options{URL: wsURL(srv)}).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), protocol.ErrProtoVersion) {
		t.Fatalf("err=%v", err)
	}
}
