package ptp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	dev "github.com/hbeckett/E900/emu/device"
)

func TestPunchBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "punch")
	punch := New(path)
	for _, ch := range []uint8{0x41, 0x42, 0} {
		if err := punch.WriteByte(ch); err != nil {
			t.Fatal(err)
		}
	}
	if err := punch.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string([]byte{0x41, 0x42, 0}) {
		t.Errorf("punched %v", data)
	}
}

// A run that never punches must not create or truncate the output.
func TestPunchLazyOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "punch")
	punch := New(path)
	if err := punch.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("punch file created without output")
	}
}

func TestPunchReelLimit(t *testing.T) {
	punch := New(filepath.Join(t.TempDir(), "punch"))
	punch.count = Reel
	if err := punch.WriteByte(1); !errors.Is(err, dev.ErrPunchLimit) {
		t.Errorf("over-reel write gave %v", err)
	}
}
