package ptr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	dev "github.com/hbeckett/E900/emu/device"
)

func TestReadBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tape")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	reader := New(path)
	defer reader.Close()
	for _, want := range []uint8{1, 2, 3} {
		ch, err := reader.ReadByte()
		if err != nil {
			t.Fatal(err)
		}
		if ch != want {
			t.Errorf("read %d expected %d", ch, want)
		}
	}
	if _, err := reader.ReadByte(); !errors.Is(err, dev.ErrReaderStop) {
		t.Errorf("end of tape gave %v", err)
	}
}

func TestMissingTape(t *testing.T) {
	reader := New(filepath.Join(t.TempDir(), "nosuch"))
	if _, err := reader.ReadByte(); err == nil || errors.Is(err, dev.ErrReaderStop) {
		t.Errorf("missing tape gave %v", err)
	}
}

func TestResidual(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tape")
	if err := os.WriteFile(path, []byte{1, 2, 3, 4, 5}, 0o644); err != nil {
		t.Fatal(err)
	}
	reader := New(path)
	defer reader.Close()
	if _, err := reader.ReadByte(); err != nil {
		t.Fatal(err)
	}
	if _, err := reader.ReadByte(); err != nil {
		t.Fatal(err)
	}

	save := filepath.Join(dir, "save")
	if err := reader.Residual(save); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(save)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string([]byte{3, 4, 5}) {
		t.Errorf("residual is %v", data)
	}
}

// A reader that was never opened still leaves an empty save file, so
// the next run sees a consistent set of scratch files.
func TestResidualUnopened(t *testing.T) {
	dir := t.TempDir()
	reader := New(filepath.Join(dir, "tape"))
	save := filepath.Join(dir, "save")
	if err := reader.Residual(save); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(save)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("save file not empty: %v", data)
	}
}
