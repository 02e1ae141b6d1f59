package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/bot"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
	tlog "github.com/Kuenec/GigaLearn-RLBot-Example/internal/persistence/log"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/transport/ws"
)

func main() {
	var (
		eventsDir  = flag.String("events", "", "directory containing ticks-*.jsonl.zst")
		configPath = flag.String("config", "./configs/bot.yaml", "bot config path")
		checkpoint = flag.String("checkpoint", "", "checkpoint directory (default: latest under checkpoints_dir)")
		toFrame    = flag.Uint64("to_frame", 0, "stop after frame (inclusive, optional)")
	)
	flag.Parse()

	if *eventsDir == "" {
		fmt.Fprintln(os.Stderr, "missing -events")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if *checkpoint != "" {
		cfg.Checkpoint = *checkpoint
	}

	mgr, dir, err := bot.Build(cfg, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build bots:", err)
		os.Exit(1)
	}

	checked, err := replay(mgr, *eventsDir, *toFrame)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	if checked == 0 {
		fmt.Fprintln(os.Stderr, "no tick records found in", *eventsDir)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d ticks (checkpoint=%s)\n", checked, dir)
}

var errStop = errors.New("stop")

// replay feeds every recorded packet to mgr and compares the controllers and state
// digests with the recorded ones. Bots missing from the recording are dropped first.
func replay(mgr *bot.Manager, dir string, toFrame uint64) (uint64, error) {
	var checked uint64
	first := true
	err := tlog.ReadTickRecords(dir, func(rec tlog.TickRecord) error {
		if toFrame != 0 && rec.Frame > toFrame {
			return errStop
		}
		if first {
			keep := make([]int, 0, len(rec.Outputs))
			for _, o := range rec.Outputs {
				keep = append(keep, o.Index)
			}
			mgr.Retain(keep)
			first = false
		}

		var msg protocol.TickMsg
		if err := json.Unmarshal(rec.Packet, &msg); err != nil {
			return fmt.Errorf("frame %d: unmarshal: %w", rec.Frame, err)
		}
		outs, err := mgr.Tick(&msg)
		if err != nil {
			return fmt.Errorf("frame %d: %w", rec.Frame, err)
		}
		got := ws.RecordOutputs(outs)
		if len(got) != len(rec.Outputs) {
			return fmt.Errorf("frame %d: %d outputs, recorded %d", rec.Frame, len(got), len(rec.Outputs))
		}
		for i, want := range rec.Outputs {
			g := got[i]
			if g.Index != want.Index {
				return fmt.Errorf("frame %d: output %d is bot %d, recorded bot %d", rec.Frame, i, g.Index, want.Index)
			}
			if g.Controller != want.Controller {
				return fmt.Errorf("controller mismatch at frame %d bot %d: got=%+v want=%+v", rec.Frame, g.Index, g.Controller, want.Controller)
			}
			if g.Digest != want.Digest {
				return fmt.Errorf("digest mismatch at frame %d bot %d: got=%s want=%s", rec.Frame, g.Index, g.Digest, want.Digest)
			}
		}
		checked++
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return checked, err
}
