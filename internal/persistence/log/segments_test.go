package log

import (
	"path/filepath"
	"testing"
)

func TestSegmentWriterRotatesOnLineCap(t *testing.T) {
	dir := t.TempDir()
	rec := &TickRecorder{w: NewSegmentWriter(dir, tickPrefix, 2)}
	for i := 0; i < 5; i++ {
		if err := rec.WriteTick(TickRecord{Frame: uint64(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	files, err := ListTickFiles(dir)
	if err != nil || len(files) != 3 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	var frames []uint64
	_ = ReadTickRecords(dir, func(r TickRecord) error {
		frames = append(frames, r.Frame)
		return nil
	})
	for i, f := range frames {
		if f != uint64(i) {
			t.Fatalf("frames out of order: %v", frames)
		}
	}
	if len(frames) != 5 {
		t.Fatalf("frames=%v", frames)
	}
}

func TestSegmentWriterNeverReusesFiles(t *testing.T) {
	dir := t.TempDir()
	for run := 0; run < 2; run++ {
		rec := NewTickRecorder(dir)
		if err := rec.WriteTick(TickRecord{Frame: uint64(run)}); err != nil {
			t.Fatal(err)
		}
		if err := rec.Close(); err != nil {
			t.Fatal(err)
		}
	}
	files, _ := ListTickFiles(dir)
	if len(files) != 2 || filepath.Base(files[0]) >= filepath.Base(files[1]) {
		t.Fatalf("files=%v", files)
	}
}

func TestSegmentWriterCloseWithoutWrites(t *testing.T) {
	w := NewSegmentWriter(t.TempDir(), "x", 0)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}
