package ws

import (
	"encoding/json"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/bot"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/persistence/indexdb"
	tlog "github.com/Kuenec/GigaLearn-RLBot-Example/internal/persistence/log"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

// allDuplicate reports a poll that changed nothing for any bot.
func allDuplicate(outs []bot.Output) bool {
	for _, o := range outs {
		if !o.Duplicate {
			return false
		}
	}
	return true
}

// RecordOutputs converts bot outputs to their recorded form, digesting each bot's state.
func RecordOutputs(outs []bot.Output) []tlog.OutputRecord {
	recs := make([]tlog.OutputRecord, 0, len(outs))
	for _, o := range outs {
		r := tlog.OutputRecord{
			Index:      o.Index,
			Controller: o.Controller,
			Decided:    o.Decided,
			Committed:  o.Committed,
		}
		if o.State != nil {
			r.Digest = o.State.Digest()
		}
		recs = append(recs, r)
	}
	return recs
}

// RecorderSink appends every non-duplicate tick to a tick recording.
type RecorderSink struct {
	Rec *tlog.TickRecorder
}

func (s RecorderSink) OnTick(raw []byte, msg *protocol.TickMsg, outs []bot.Output) error {
	if allDuplicate(outs) {
		return nil
	}
	return s.Rec.WriteTick(tlog.TickRecord{
		Frame:   msg.GameInfo.FrameNum,
		Seconds: msg.GameInfo.SecondsElapsed,
		Packet:  json.RawMessage(append([]byte(nil), raw...)),
		Outputs: RecordOutputs(outs),
	})
}

// IndexSink feeds ticks, decisions and commits to the sqlite read-model.
type IndexSink struct {
	Index *indexdb.SQLiteIndex
}

func (s IndexSink) OnTick(_ []byte, msg *protocol.TickMsg, outs []bot.Output) error {
	if allDuplicate(outs) {
		return nil
	}
	goal := false
	for _, o := range outs {
		if o.State != nil && o.State.GoalScored {
			goal = true
		}
	}
	s.Index.WriteTick(indexdb.TickRow{
		Frame:      msg.GameInfo.FrameNum,
		Seconds:    msg.GameInfo.SecondsElapsed,
		GoalScored: goal,
		Players:    len(msg.Players),
		Bots:       len(outs),
	})
	for _, o := range outs {
		if !o.Decided && !o.Committed {
			continue
		}
		digest := ""
		if o.State != nil {
			digest = o.State.Digest()
		}
		if o.Decided {
			s.Index.WriteDecision(indexdb.DecisionRow{
				Frame: msg.GameInfo.FrameNum, BotIndex: o.Index, Kind: indexdb.KindDecide, Action: o.Decision, Digest: digest,
			})
		}
		if o.Committed {
			s.Index.WriteDecision(indexdb.DecisionRow{
				Frame: msg.GameInfo.FrameNum, BotIndex: o.Index, Kind: indexdb.KindCommit, Action: o.Action, Digest: digest,
			})
		}
	}
	return nil
}
