package bot

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/policy"
)

// ResolveCheckpoint returns cfg.Checkpoint, or the latest checkpoint under
// cfg.CheckpointsDir when none is pinned.
func ResolveCheckpoint(cfg config.Bot) (string, error) {
	if cfg.Checkpoint != "" {
		return cfg.Checkpoint, nil
	}
	return policy.FindLatestCheckpoint(cfg.CheckpointsDir)
}

// Build loads the checkpoint once and registers one bot per entry of cfg.Bots. The network
// is shared; each bot owns its inference unit, seeded with cfg.Seed plus its index.
func Build(cfg config.Bot, log logrus.FieldLogger) (*Manager, string, error) {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	dir, err := ResolveCheckpoint(cfg)
	if err != nil {
		return nil, "", err
	}
	parser := policy.NewLookupAction()
	net, err := policy.LoadMLP(dir, cfg, parser.ActionCount())
	if err != nil {
		return nil, "", err
	}

	mgr := NewManager(log)
	for _, spec := range cfg.Bots {
		unit, err := policy.NewInferUnit(policy.AdvancedObs{}, parser, net, cfg.ObsSize, cfg.Seed+int64(spec.Index))
		if err != nil {
			return nil, "", err
		}
		b, err := New(spec, cfg, unit, log)
		if err != nil {
			return nil, "", err
		}
		if err := mgr.Add(b); err != nil {
			return nil, "", fmt.Errorf("config: %w", err)
		}
	}
	return mgr, dir, nil
}
