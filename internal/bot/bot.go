// Package bot drives one controlled car per Bot: it reconstructs the game state from each
// host poll, consults the policy on the configured cadence and emits the committed command.
package bot

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/tracker"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

// Inferer maps the reconstructed state to an action for player.
type Inferer interface {
	InferAction(player *model.Player, state *model.GameState, deterministic bool) (model.Action, error)
}

// Output is the result of one invocation.
type Output struct {
	Index      int
	FrameNum   uint64
	Controller protocol.Controller
	// Action is the committed command behind Controller.
	Action model.Action

	Duplicate bool
	Decided   bool
	Committed bool
	// Decision is the policy action chosen this invocation, valid when Decided.
	Decision model.Action

	// State is the reconstructed state; nil for duplicate polls. Valid until the next call.
	State *model.GameState
}

type Bot struct {
	index int
	team  model.Team
	name  string
	cfg   config.Bot

	sched   *Scheduler
	tracker *tracker.Tracker
	inferer Inferer
	log     *logrus.Entry

	last Output
}

// New builds a bot for the car at spec.Index. cfg is copied and never shared.
func New(spec config.BotSpec, cfg config.Bot, inf Inferer, log logrus.FieldLogger) (*Bot, error) {
	if inf == nil {
		return nil, fmt.Errorf("bot %d: nil inferer", spec.Index)
	}
	if cfg.TickSkip < 1 || cfg.ActionDelay < 0 || cfg.ActionDelay > cfg.TickSkip {
		return nil, fmt.Errorf("bot %d: invalid tick_skip=%d action_delay=%d", spec.Index, cfg.TickSkip, cfg.ActionDelay)
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	cfg.Bots = append([]config.BotSpec(nil), cfg.Bots...)
	b := &Bot{
		index:   spec.Index,
		team:    model.Team(spec.Team),
		name:    spec.Name,
		cfg:     cfg,
		sched:   NewScheduler(cfg.TickSkip, cfg.ActionDelay),
		tracker: tracker.New(cfg.TickSkip),
		inferer: inf,
		log:     log.WithFields(logrus.Fields{"bot": spec.Name, "index": spec.Index}),
	}
	b.log.WithFields(logrus.Fields{
		"tick_skip":     cfg.TickSkip,
		"action_delay":  cfg.ActionDelay,
		"deterministic": cfg.Deterministic,
	}).Info("bot created")
	return b, nil
}

func (b *Bot) Index() int { return b.index }
func (b *Bot) Name() string { return b.name }
func (b *Bot) Team() model.Team { return b.team }

// Config returns the bot's own configuration copy.
func (b *Bot) Config() config.Bot { return b.cfg }

// GetOutput runs one invocation and returns the controller to send.
func (b *Bot) GetOutput(msg *protocol.TickMsg) (protocol.Controller, error) {
	out, err := b.Step(msg)
	return out.Controller, err
}

// Step runs one invocation. A policy failure is returned as an error and leaves the
// previously committed command in place.
func (b *Bot) Step(msg *protocol.TickMsg) (Output, error) {
	adv := b.sched.Advance(msg.GameInfo.SecondsElapsed)
	if adv.Duplicate {
		out := b.last
		out.FrameNum = msg.GameInfo.FrameNum
		out.Duplicate, out.Decided, out.Committed = true, false, false
		out.State = nil
		return out, nil
	}
	if adv.Fresh {
		if b.tracker.Previous() != nil {
			b.log.WithField("frame", msg.GameInfo.FrameNum).Info("host clock went back; state reset")
		}
		b.tracker.Reset()
	}

	state := b.tracker.Update(msg, adv.DT, b.index, b.sched.Committed())
	b.logEdges(state)

	out := Output{Index: b.index, FrameNum: msg.GameInfo.FrameNum, State: state}
	out.Committed = b.sched.CommitDue()

	if b.sched.DecisionDue() {
		player := state.Player(b.index)
		if player == nil {
			b.log.WithField("frame", msg.GameInfo.FrameNum).Debug("controlled car missing from tick; decision skipped")
		} else {
			a, err := b.inferer.InferAction(player, state, b.cfg.Deterministic)
			if err != nil {
				return b.last, fmt.Errorf("bot %d frame %d: infer: %w", b.index, msg.GameInfo.FrameNum, err)
			}
			b.sched.Decide(a)
			out.Decided, out.Decision = true, a
			if b.sched.CommitDue() {
				out.Committed = true
			}
			b.log.WithFields(logrus.Fields{"frame": msg.GameInfo.FrameNum, "action": a}).Debug("decision")
		}
	}

	out.Action = b.sched.Committed()
	out.Controller = ToController(out.Action)
	b.last = out
	return out, nil
}

func (b *Bot) logEdges(gs *model.GameState) {
	if !b.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	if gs.GoalScored {
		b.log.WithField("frame", gs.LastTickCount).Debug("goal scored")
	}
	if p := gs.Player(b.index); p != nil {
		if p.GotFlipReset {
			b.log.WithField("frame", gs.LastTickCount).Debug("flip reset")
		}
		if prev := b.tracker.Previous().LinkedPlayer(b.index, p.CarID); p.IsDemoed && prev != nil && !prev.IsDemoed {
			b.log.WithField("frame", gs.LastTickCount).Debug("demolished")
		}
	}
}

// ToController converts a command to the wire controller; use_item is always false.
func ToController(a model.Action) protocol.Controller {
	return protocol.Controller{
		Throttle:  a.Throttle,
		Steer:     a.Steer,
		Pitch:     a.Pitch,
		Yaw:       a.Yaw,
		Roll:      a.Roll,
		Jump:      a.Jump,
		Boost:     a.Boost,
		Handbrake: a.Handbrake,
	}
}
