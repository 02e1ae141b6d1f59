package policy

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
)

const layerNormEps = 1e-5

// LinearWeights is one dense layer; Weight is [out][in].
type LinearWeights struct {
	Weight [][]float32 `json:"weight"`
	Bias   []float32   `json:"bias"`
}

type NormWeights struct {
	Gamma []float32 `json:"gamma"`
	Beta  []float32 `json:"beta"`
}

// StackWeights holds one stack's dense layers in order and, when layer norm is enabled,
// one norm per hidden layer.
type StackWeights struct {
	Layers []LinearWeights `json:"layers"`
	Norms  []NormWeights   `json:"norms,omitempty"`
}

type stack struct {
	cfg     config.Network
	weights StackWeights
	act     func(float32) float32
}

// MLP is the shared trunk followed by the policy head. It is read-only after
// construction and safe for concurrent use.
type MLP struct {
	shared stack
	policy stack
	inSize int
	outLen int
}

// NewMLP checks every weight shape against the network configs. obsSize is the input
// width and actions the width of the policy output layer.
func NewMLP(shared, policy config.Network, sharedW, policyW StackWeights, obsSize, actions int) (*MLP, error) {
	sharedOut, err := checkStack("shared_head", shared, sharedW, obsSize, 0)
	if err != nil {
		return nil, err
	}
	if _, err := checkStack("policy", policy, policyW, sharedOut, actions); err != nil {
		return nil, err
	}
	m := &MLP{
		shared: stack{cfg: shared, weights: sharedW, act: activation(shared.Activation)},
		policy: stack{cfg: policy, weights: policyW, act: activation(policy.Activation)},
		inSize: obsSize,
		outLen: actions,
	}
	if m.shared.act == nil || m.policy.act == nil {
		return nil, fmt.Errorf("unknown activation %q/%q", shared.Activation, policy.Activation)
	}
	return m, nil
}

// checkStack validates shapes and returns the stack's output width.
func checkStack(name string, cfg config.Network, w StackWeights, in, outputWidth int) (int, error) {
	sizes := append([]int(nil), cfg.LayerSizes...)
	if cfg.AddOutputLayer {
		sizes = append(sizes, outputWidth)
	}
	if len(w.Layers) != len(sizes) {
		return 0, fmt.Errorf("%s: %d layers, config wants %d", name, len(w.Layers), len(sizes))
	}
	wantNorms := 0
	if cfg.AddLayerNorm {
		wantNorms = len(cfg.LayerSizes)
	}
	if len(w.Norms) != wantNorms {
		return 0, fmt.Errorf("%s: %d norms, config wants %d", name, len(w.Norms), wantNorms)
	}
	for i, out := range sizes {
		l := w.Layers[i]
		if len(l.Weight) != out || len(l.Bias) != out {
			return 0, fmt.Errorf("%s: layer %d has %d rows/%d biases, want %d", name, i, len(l.Weight), len(l.Bias), out)
		}
		for r, row := range l.Weight {
			if len(row) != in {
				return 0, fmt.Errorf("%s: layer %d row %d has %d inputs, want %d", name, i, r, len(row), in)
			}
		}
		if i < len(w.Norms) && (len(w.Norms[i].Gamma) != out || len(w.Norms[i].Beta) != out) {
			return 0, fmt.Errorf("%s: norm %d width mismatch, want %d", name, i, out)
		}
		in = out
	}
	return in, nil
}

func activation(name string) func(float32) float32 {
	switch name {
	case "relu":
		return func(x float32) float32 { return math32.Max(x, 0) }
	case "leaky_relu":
		return func(x float32) float32 {
			if x < 0 {
				return 0.01 * x
			}
			return x
		}
	case "tanh":
		return math32.Tanh
	case "sigmoid":
		return func(x float32) float32 { return 1 / (1 + math32.Exp(-x)) }
	}
	return nil
}

func (m *MLP) Logits(obs []float32) ([]float32, error) {
	if len(obs) != m.inSize {
		return nil, fmt.Errorf("mlp: input %d, want %d", len(obs), m.inSize)
	}
	x := m.shared.forward(obs)
	return m.policy.forward(x), nil
}

func (s *stack) forward(x []float32) []float32 {
	hidden := len(s.cfg.LayerSizes)
	for i, l := range s.weights.Layers {
		y := dense(l, x)
		if i < hidden {
			if i < len(s.weights.Norms) {
				layerNorm(y, s.weights.Norms[i])
			}
			for j := range y {
				y[j] = s.act(y[j])
			}
		}
		x = y
	}
	return x
}

func dense(l LinearWeights, x []float32) []float32 {
	y := make([]float32, len(l.Weight))
	for o, row := range l.Weight {
		sum := l.Bias[o]
		for i, w := range row {
			sum += w * x[i]
		}
		y[o] = sum
	}
	return y
}

func layerNorm(y []float32, n NormWeights) {
	var mean float32
	for _, v := range y {
		mean += v
	}
	mean /= float32(len(y))
	var variance float32
	for _, v := range y {
		d := v - mean
		variance += d * d
	}
	variance /= float32(len(y))
	inv := 1 / math32.Sqrt(variance+layerNormEps)
	for i := range y {
		y[i] = (y[i]-mean)*inv*n.Gamma[i] + n.Beta[i]
	}
}
