package log

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

func TestTickRecorderRoundTripAcrossHours(t *testing.T) {
	dir := t.TempDir()
	rec := NewTickRecorder(dir)
	clock := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	rec.w.now = func() time.Time { return clock }

	for i := 0; i < 6; i++ {
		if i == 3 {
			clock = clock.Add(2 * time.Minute)
		}
		err := rec.WriteTick(TickRecord{
			Frame:   uint64(100 + i),
			Seconds: float32(i) / 120,
			Packet:  json.RawMessage(`{"type":"TICK"}`),
			Outputs: []OutputRecord{{Index: 0, Controller: protocol.Controller{Throttle: float32(i)}, Digest: "abc"}},
		})
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListTickFiles(dir)
	if err != nil || len(files) != 2 {
		t.Fatalf("files=%v err=%v", files, err)
	}

	var frames []uint64
	err = ReadTickRecords(dir, func(r TickRecord) error {
		frames = append(frames, r.Frame)
		if r.Outputs[0].Controller.Throttle != float32(r.Frame-100) || string(r.Packet) != `{"type":"TICK"}` {
			t.Fatalf("record %d mangled: %+v", r.Frame, r)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(frames) != 6 || frames[0] != 100 || frames[5] != 105 {
		t.Fatalf("frames=%v", frames)
	}
}

func TestReadTickRecordsStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	rec := NewTickRecorder(dir)
	for i := 0; i < 3; i++ {
		_ = rec.WriteTick(TickRecord{Frame: uint64(i)})
	}
	_ = rec.Close()

	stop := errors.New("stop")
	n := 0
	err := ReadTickRecords(dir, func(TickRecord) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Fatalf("err=%v n=%d", err, n)
	}
}
