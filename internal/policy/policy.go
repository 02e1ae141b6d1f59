// Package policy turns a reconstructed game state into a controller command: an observation
// builder encodes the state, a network scores every discrete action and an action parser
// decodes the chosen index.
package policy

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/game/model"
)

// ObsBuilder encodes state from the point of view of player.
type ObsBuilder interface {
	BuildObs(player *model.Player, state *model.GameState) []float32
}

// ActionParser decodes a discrete action index into a command.
type ActionParser interface {
	ActionCount() int
	ParseAction(index int, player *model.Player, state *model.GameState) (model.Action, error)
}

// Network scores every discrete action for one observation.
type Network interface {
	Logits(obs []float32) ([]float32, error)
}

// InferUnit composes the three collaborators. A unit is owned by one bot; the Network may
// be shared between units.
type InferUnit struct {
	obs     ObsBuilder
	parser  ActionParser
	net     Network
	obsSize int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewInferUnit(obs ObsBuilder, parser ActionParser, net Network, obsSize int, seed int64) (*InferUnit, error) {
	if obs == nil || parser == nil || net == nil {
		return nil, fmt.Errorf("policy: nil collaborator")
	}
	if obsSize <= 0 {
		return nil, fmt.Errorf("policy: obs size must be > 0")
	}
	return &InferUnit{
		obs:     obs,
		parser:  parser,
		net:     net,
		obsSize: obsSize,
		rng:     rand.New(rand.NewSource(seed)),
	}, nil
}

// InferAction builds the observation, runs the network and parses the selected action.
// Deterministic selection takes the highest logit; otherwise the index is sampled from
// the softmax distribution.
func (u *InferUnit) InferAction(player *model.Player, state *model.GameState, deterministic bool) (model.Action, error) {
	obs := u.obs.BuildObs(player, state)
	if len(obs) != u.obsSize {
		return model.Action{}, fmt.Errorf("policy: obs size %d, configured %d", len(obs), u.obsSize)
	}
	logits, err := u.net.Logits(obs)
	if err != nil {
		return model.Action{}, fmt.Errorf("policy: %w", err)
	}
	if n := u.parser.ActionCount(); len(logits) != n {
		return model.Action{}, fmt.Errorf("policy: %d logits for %d actions", len(logits), n)
	}

	var idx int
	if deterministic {
		idx = Argmax(logits)
	} else {
		u.mu.Lock()
		idx = Sample(logits, u.rng)
		u.mu.Unlock()
	}
	return u.parser.ParseAction(idx, player, state)
}

func Argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// Sample draws an index from softmax(logits).
func Sample(logits []float32, rng *rand.Rand) int {
	probs := Softmax(logits)
	r := rng.Float32()
	var acc float32
	for i, p := range probs {
		acc += p
		if r < acc {
			return i
		}
	}
	return len(probs) - 1
}

func Softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}
	hi := logits[Argmax(logits)]
	var sum float32
	for i, l := range logits {
		out[i] = math32.Exp(l - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
