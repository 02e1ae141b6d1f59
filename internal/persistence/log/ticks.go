package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/Kuenec/GigaLearn-RLBot-Example/internal/protocol"
)

const tickPrefix = "ticks"

// TickRecord is one processed host tick: the raw TICK payload and what every bot answered.
type TickRecord struct {
	Frame   uint64          `json:"frame"`
	Seconds float32         `json:"seconds"`
	Packet  json.RawMessage `json:"packet"`
	Outputs []OutputRecord  `json:"outputs"`
}

type OutputRecord struct {
	Index      int                 `json:"index"`
	Controller protocol.Controller `json:"controller"`
	Decided    bool                `json:"decided,omitempty"`
	Committed  bool                `json:"committed,omitempty"`
	// Digest is the reconstructed state digest the bot acted on.
	Digest string `json:"digest,omitempty"`
}

// TickRecorder writes TickRecords under <dir>/ticks-<hour>-<seq>.jsonl.zst.
type TickRecorder struct{ w *SegmentWriter }

func NewTickRecorder(dir string) *TickRecorder {
	return &TickRecorder{w: NewSegmentWriter(dir, tickPrefix, DefaultSegmentRecords)}
}

func (r *TickRecorder) WriteTick(rec TickRecord) error { return r.w.Write(rec) }
func (r *TickRecorder) Flush() error                   { return r.w.Flush() }
func (r *TickRecorder) Close() error                   { return r.w.Close() }

// ListTickFiles returns the recording files of dir in chronological order.
func ListTickFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, tickPrefix+"-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

// ReadTickRecords streams every record of dir to fn, stopping at the first error.
func ReadTickRecords(dir string, fn func(TickRecord) error) error {
	files, err := ListTickFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := readTickFile(path, fn); err != nil {
			return err
		}
	}
	return nil
}

func readTickFile(path string, fn func(TickRecord) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for sc.Scan() {
		var rec TickRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return sc.Err()
}
