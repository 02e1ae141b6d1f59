package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/config"
)

// Weight files inside a checkpoint directory.
const (
	SharedHeadFile = "SHARED_HEAD.json.zst"
	PolicyFile     = "POLICY.json.zst"
)

var ErrNoCheckpoint = errors.New("no checkpoint found")

// FindLatestCheckpoint returns the sub-directory of dir whose name is the largest number.
// Checkpoints are named by the step count they were saved at.
func FindLatestCheckpoint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read checkpoints dir: %w", err)
	}
	best, bestName := int64(-1), ""
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.ParseInt(e.Name(), 10, 64)
		if err != nil || n < 0 {
			continue
		}
		if n > best {
			best, bestName = n, e.Name()
		}
	}
	if bestName == "" {
		return "", fmt.Errorf("%s: %w", dir, ErrNoCheckpoint)
	}
	return filepath.Join(dir, bestName), nil
}

// LoadMLP reads a checkpoint directory and builds the network described by cfg.
func LoadMLP(dir string, cfg config.Bot, actions int) (*MLP, error) {
	var shared StackWeights
	if len(cfg.SharedHead.LayerSizes) > 0 {
		w, err := ReadWeights(filepath.Join(dir, SharedHeadFile))
		if err != nil {
			return nil, err
		}
		shared = w
	}
	policy, err := ReadWeights(filepath.Join(dir, PolicyFile))
	if err != nil {
		return nil, err
	}
	m, err := NewMLP(cfg.SharedHead, cfg.Policy, shared, policy, cfg.ObsSize, actions)
	if err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", dir, err)
	}
	return m, nil
}

func ReadWeights(path string) (StackWeights, error) {
	var w StackWeights
	f, err := os.Open(path)
	if err != nil {
		return w, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return w, err
	}
	defer dec.Close()

	if err := json.NewDecoder(dec).Decode(&w); err != nil {
		return w, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return w, nil
}

// WriteWeights stores w as zstd-compressed JSON at path.
func WriteWeights(path string, w StackWeights) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return err
	}
	if err := json.NewEncoder(enc).Encode(w); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
