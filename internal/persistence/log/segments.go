package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultSegmentRecords caps the lines of one segment file.
const DefaultSegmentRecords = 100_000

// segment is one open <prefix>-<hour>-<seq>.jsonl.zst file.
type segment struct {
	hour  string
	lines int
	f     *os.File
	enc   *zstd.Encoder
	buf   *bufio.Writer
}

func (s *segment) close() error {
	ferr := s.buf.Flush()
	if err := s.enc.Close(); err != nil && ferr == nil {
		ferr = err
	}
	if err := s.f.Close(); err != nil && ferr == nil {
		ferr = err
	}
	return ferr
}

// SegmentWriter appends JSON lines to zstd segment files. A new segment starts on every
// UTC hour change and after maxLines lines; existing segments are never appended to, so
// a restarted process continues with the next sequence number.
type SegmentWriter struct {
	dir      string
	prefix   string
	maxLines int
	now      func() time.Time

	mu  sync.Mutex
	cur *segment
}

func NewSegmentWriter(dir, prefix string, maxLines int) *SegmentWriter {
	if maxLines <= 0 {
		maxLines = DefaultSegmentRecords
	}
	return &SegmentWriter{dir: dir, prefix: prefix, maxLines: maxLines, now: time.Now}
}

func (w *SegmentWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if w.cur == nil || w.cur.hour != hour || w.cur.lines >= w.maxLines {
		if err := w.openLocked(hour); err != nil {
			return err
		}
	}
	b = append(b, '\n')
	if _, err := w.cur.buf.Write(b); err != nil {
		return err
	}
	w.cur.lines++
	return nil
}

// Flush pushes buffered lines into the current zstd frame.
func (w *SegmentWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cur == nil {
		return nil
	}
	if err := w.cur.buf.Flush(); err != nil {
		return err
	}
	return w.cur.enc.Flush()
}

func (w *SegmentWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cur == nil {
		return nil
	}
	err := w.cur.close()
	w.cur = nil
	return err
}

func (w *SegmentWriter) openLocked(hour string) error {
	if w.cur != nil {
		if err := w.cur.close(); err != nil {
			return err
		}
		w.cur = nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	for seq := 0; ; seq++ {
		path := filepath.Join(w.dir, fmt.Sprintf("%s-%s-%04d.jsonl.zst", w.prefix, hour, seq))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return err
		}
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			_ = f.Close()
			return err
		}
		w.cur = &segment{hour: hour, f: f, enc: enc, buf: bufio.NewWriterSize(enc, 128*1024)}
		return nil
	}
}
