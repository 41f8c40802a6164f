/*
   E900 session tests.

   Copyright 2025, Hugh Beckett

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cpu "github.com/hbeckett/E900/emu/cpu"
	store "github.com/hbeckett/E900/emu/store"
	debug "github.com/hbeckett/E900/util/debug"
)

func testConfig(dir string) Config {
	return Config{
		ReaderPath:  filepath.Join(dir, "reader"),
		PunchPath:   filepath.Join(dir, "punch"),
		TTYInPath:   filepath.Join(dir, "ttyin"),
		PlotPath:    filepath.Join(dir, "plot.png"),
		StorePath:   filepath.Join(dir, "store"),
		SavePath:    filepath.Join(dir, "save"),
		StopPath:    filepath.Join(dir, "stop"),
		JumpAddr:    8181,
		Abandon:     -1,
		TraceAfter:  -1,
		TraceFrom:   -1,
		TraceWindow: -1,
		Monitor:     -1,
		PlotWidth:   100,
		PlotHeight:  100,
		PenSize:     1,
	}
}

// A jump to itself is the conventional halt: exit code 0, the stop
// address recorded, the store written back.
func TestDynamicStop(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 8, 100))

	if code := session.Run(); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if cpu.ICount() < 1 {
		t.Error("no instructions counted")
	}

	stop, err := os.ReadFile(cfg.StopPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(stop) != "100" {
		t.Errorf("stop file holds %q", stop)
	}
	if _, err := os.Stat(cfg.StorePath); err != nil {
		t.Errorf("store image not persisted: %v", err)
	}
	if _, err := os.Stat(cfg.SavePath); err != nil {
		t.Errorf("residual tape not written: %v", err)
	}
}

// Entering the initial orders with a tape that never completes a word
// runs the reader dry: exit code 2.
func TestBootstrapReaderStop(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	if err := os.WriteFile(cfg.ReaderPath, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	if code := session.Run(); code != 2 {
		t.Fatalf("exit code %d", code)
	}

	// Every tape character was consumed.
	save, err := os.ReadFile(cfg.SavePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(save) != 0 {
		t.Errorf("residual tape %v", save)
	}
}

// The initial orders unpack a word each time the accumulated
// characters go negative: a marker character of 8 shifts up to the
// sign bit over three reads, then the next character is stored. Three
// such groups load three words below the initial orders and the
// bootstrap jumps to the first of them.
func TestBootstrapLoadsWords(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Abandon = 44 // bootstrap has jumped to 8177 by then
	tape := []byte{8, 0, 0, 5, 8, 0, 0, 6, 8, 0, 0, 7}
	if err := os.WriteFile(cfg.ReaderPath, tape, 0o644); err != nil {
		t.Fatal(err)
	}

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	if code := session.Run(); code != 8 {
		t.Fatalf("exit code %d", code)
	}
	for i, want := range []uint32{5, 6, 7} {
		addr := uint32(8177 + i)
		if got := store.GetMemory(addr); got != want {
			t.Errorf("store[%d] = %d expected %d", addr, got, want)
		}
	}
	if cpu.SCR() != 8177 {
		t.Errorf("bootstrap left SCR at %d", cpu.SCR())
	}
}

// Punch one character then halt: the punch file holds exactly the
// emitted byte.
func TestPunchRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 4, 200))
	store.SetMemory(200, 0x41)
	store.SetMemory(101, store.MakeIns(0, 15, 6144))
	store.SetMemory(102, store.MakeIns(0, 8, 102))

	if code := session.Run(); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	punched, err := os.ReadFile(cfg.PunchPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(punched) != 1 || punched[0] != 0x41 {
		t.Errorf("punched %v", punched)
	}
}

// A machine fault exits 1 and must not write the store back.
func TestFaultSkipsPersistence(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 15, 100)) // unsupported i/o

	if code := session.Run(); code != 1 {
		t.Fatalf("exit code %d", code)
	}
	if _, err := os.Stat(cfg.StorePath); !os.IsNotExist(err) {
		t.Error("store image written after a fault")
	}
	if _, err := os.Stat(cfg.SavePath); !os.IsNotExist(err) {
		t.Error("residual tape written after a fault")
	}
}

// The abandonment limit stops a runaway program with exit code 8.
func TestInstructionLimit(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100
	cfg.Abandon = 10

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 8, 101))
	store.SetMemory(101, store.MakeIns(0, 8, 100))

	if code := session.Run(); code != 8 {
		t.Fatalf("exit code %d", code)
	}
	if cpu.ICount() != 10 {
		t.Errorf("stopped after %d instructions", cpu.ICount())
	}
}

// A trace window turns tracing on and abandons 1000 instructions on.
func TestTraceWindow(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100
	cfg.TraceWindow = 5

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 8, 101))
	store.SetMemory(101, store.MakeIns(0, 8, 100))

	if code := session.Run(); code != 8 {
		t.Fatalf("exit code %d", code)
	}
	if cpu.ICount() != 1005 {
		t.Errorf("stopped after %d instructions", cpu.ICount())
	}
	if !cpu.Tracing() {
		t.Error("trace window did not start tracing")
	}
}

// A write to the monitored location is reported and traces the
// guilty instruction.
func TestMonitoredLocation(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100
	cfg.Monitor = 50

	var diag bytes.Buffer
	debug.SetOutput(&diag)
	defer debug.SetOutput(os.Stderr)

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 10, 50)) // increment the monitored word
	store.SetMemory(101, store.MakeIns(0, 8, 101))

	if code := session.Run(); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	out := diag.String()
	if !strings.Contains(out, "Monitored location changed from 0 to 1") {
		t.Errorf("no monitor report in %q", out)
	}
	// The one-shot trace line carries the instruction count and address.
	if !strings.Contains(out, "0^0100") {
		t.Errorf("no trace line in %q", out)
	}
}

// The store image written on exit reloads to the identical store.
func TestPersistedImageReloads(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 4, 200))
	store.SetMemory(200, 0o654321)
	store.SetMemory(101, store.MakeIns(0, 5, 300))
	store.SetMemory(102, store.MakeIns(0, 8, 102))

	if code := session.Run(); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	want := store.GetMemory(300)
	if want != 0o654321 {
		t.Fatalf("program did not run, store[300]=%o", want)
	}

	second := New(cfg)
	if err := second.Prime(); err != nil {
		t.Fatal(err)
	}
	if got := store.GetMemory(300); got != want {
		t.Errorf("reloaded store[300]=%o expected %o", got, want)
	}
	second.Finish(cpu.StopNone, nil)
}

// Level terminate from level 1 moves the SCR to store cell 6.
func TestLevelTerminate(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JumpAddr = 100

	session := New(cfg)
	if err := session.Prime(); err != nil {
		t.Fatal(err)
	}
	store.SetMemory(100, store.MakeIns(0, 15, 7168))
	store.SetMemory(6, 300) // level 4 resumes here
	store.SetMemory(300, store.MakeIns(0, 8, 300))

	if code := session.Run(); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if cpu.Level() != 4 {
		t.Errorf("finished at level %d", cpu.Level())
	}
	stop, err := os.ReadFile(cfg.StopPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(stop) != "300" {
		t.Errorf("stop file holds %q", stop)
	}
}
