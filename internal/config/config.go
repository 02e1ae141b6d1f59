// Package config loads the per-process bot configuration. Every bot receives its own copy
// at construction and never reads it from anywhere else.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Network describes one fully connected stack of the policy network.
type Network struct {
	LayerSizes     []int  `yaml:"layer_sizes"`
	Activation     string `yaml:"activation"`
	AddLayerNorm   bool   `yaml:"add_layer_norm"`
	AddOutputLayer bool   `yaml:"add_output_layer"`
}

// BotSpec is one controlled car registered with the host.
type BotSpec struct {
	Index int    `yaml:"index"`
	Team  int    `yaml:"team"`
	Name  string `yaml:"name"`
}

type Bot struct {
	Port    int    `yaml:"port"`
	HostURL string `yaml:"host_url,omitempty"`

	TickSkip      int   `yaml:"tick_skip"`
	ActionDelay   int   `yaml:"action_delay"`
	Deterministic bool  `yaml:"deterministic"`
	Seed          int64 `yaml:"seed"`
	UseGPU        bool  `yaml:"use_gpu"`
	ObsSize       int   `yaml:"obs_size"`

	SharedHead Network `yaml:"shared_head"`
	Policy     Network `yaml:"policy"`

	// Checkpoint is an explicit checkpoint directory; when empty the latest one under
	// CheckpointsDir is used.
	Checkpoint     string `yaml:"checkpoint,omitempty"`
	CheckpointsDir string `yaml:"checkpoints_dir,omitempty"`

	Bots []BotSpec `yaml:"bots"`

	RecordDir       string `yaml:"record_dir,omitempty"`
	IndexDB         string `yaml:"index_db,omitempty"`
	ValidatePackets bool   `yaml:"validate_packets"`

	LogLevel  string `yaml:"log_level"`
	SentryDSN string `yaml:"sentry_dsn,omitempty"`
}

const DefaultBotName = "GigaLearnBot"

var activations = map[string]struct{}{
	"relu":       {},
	"leaky_relu": {},
	"tanh":       {},
	"sigmoid":    {},
}

// KnownActivation reports whether name is an activation the policy network implements.
func KnownActivation(name string) bool {
	_, ok := activations[name]
	return ok
}

// Defaults mirrors the stock parameters of the trained bot.
func Defaults() Bot {
	return Bot{
		Port:          32257,
		TickSkip:      8,
		ActionDelay:   7,
		Deterministic: true,
		UseGPU:        true,
		ObsSize:       109,
		SharedHead: Network{
			Activation: "relu",
		},
		Policy: Network{
			LayerSizes:     []int{1024, 1024, 1024, 1024},
			Activation:     "relu",
			AddLayerNorm:   true,
			AddOutputLayer: true,
		},
		CheckpointsDir: "checkpoints",
		LogLevel:       "info",
	}
}

func Load(path string) (Bot, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("bot.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("bot.yaml: %w", err)
	}
	return cfg, nil
}

func (c *Bot) Normalize() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.HostURL) == "" {
		c.HostURL = fmt.Sprintf("ws://127.0.0.1:%d/v1/bot", c.Port)
	}
	for _, n := range []*Network{&c.SharedHead, &c.Policy} {
		n.Activation = strings.ToLower(strings.TrimSpace(n.Activation))
		if n.Activation == "" {
			n.Activation = "relu"
		}
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.Bots) == 0 {
		c.Bots = []BotSpec{{Index: 0, Team: 0}}
	}
	for i := range c.Bots {
		c.Bots[i].Name = strings.TrimSpace(c.Bots[i].Name)
		if c.Bots[i].Name == "" {
			c.Bots[i].Name = DefaultBotName
		}
	}
}

func (c Bot) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in [1, 65535]")
	}
	if c.TickSkip < 1 {
		return fmt.Errorf("tick_skip must be >= 1")
	}
	if c.ActionDelay < 0 || c.ActionDelay > c.TickSkip {
		return fmt.Errorf("action_delay must be in [0, tick_skip]")
	}
	if c.ObsSize <= 0 {
		return fmt.Errorf("obs_size must be > 0")
	}
	if err := c.SharedHead.validate("shared_head"); err != nil {
		return err
	}
	if err := c.Policy.validate("policy"); err != nil {
		return err
	}
	if c.SharedHead.AddOutputLayer {
		return fmt.Errorf("shared_head.add_output_layer is not supported")
	}
	if !c.Policy.AddOutputLayer {
		return fmt.Errorf("policy.add_output_layer must be true")
	}
	if len(c.Bots) == 0 {
		return fmt.Errorf("bots must not be empty")
	}
	seen := map[int]bool{}
	for _, b := range c.Bots {
		if b.Index < 0 || b.Index >= 64 {
			return fmt.Errorf("bot index %d out of range", b.Index)
		}
		if seen[b.Index] {
			return fmt.Errorf("duplicate bot index: %d", b.Index)
		}
		seen[b.Index] = true
		if b.Team != 0 && b.Team != 1 {
			return fmt.Errorf("bot %d team must be 0 or 1", b.Index)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func (n Network) validate(name string) error {
	for i, s := range n.LayerSizes {
		if s <= 0 {
			return fmt.Errorf("%s.layer_sizes[%d] must be > 0", name, i)
		}
	}
	if !KnownActivation(n.Activation) {
		return fmt.Errorf("%s.activation %q unknown", name, n.Activation)
	}
	return nil
}
