/*
   E900 session manager.

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

   The session manager owns one run of the machine: it primes the store
   and registers, drives the fetch/decode/execute loop with monitoring
   and trace arming, detects the stop conditions, and persists the
   machine's durable state on the way out. The store image, the
   residual reader tape and the stop file together carry the machine's
   state from one session to the next.
*/

package core

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	cpu "github.com/hbeckett/E900/emu/cpu"
	plotter "github.com/hbeckett/E900/emu/plotter"
	ptp "github.com/hbeckett/E900/emu/ptp"
	ptr "github.com/hbeckett/E900/emu/ptr"
	store "github.com/hbeckett/E900/emu/store"
	tty "github.com/hbeckett/E900/emu/tty"
	debug "github.com/hbeckett/E900/util/debug"
)

// ErrInterrupted reports that the host asked for termination.
var ErrInterrupted = errors.New("execution terminated by interrupt")

// Config carries every setting of one session, resolved from the
// command line and the optional configuration file.
type Config struct {
	ReaderPath string // paper tape reader input
	PunchPath  string // paper tape punch output
	TTYInPath  string // teletype input
	PlotPath   string // plotter output
	StorePath  string // store image
	SavePath   string // unconsumed paper tape input
	StopPath   string // dynamic stop address

	JumpAddr uint32 // operator jump keys, where execution commences

	Abandon     int64 // abandon after this many instructions, -1 disabled
	TraceAfter  int64 // start tracing after this many instructions, -1 disabled
	TraceFrom   int64 // start tracing when this address is reached, -1 disabled
	TraceWindow int64 // trace 1000 instructions after this count, -1 disabled
	Monitor     int64 // report writes to this location, -1 disabled

	PlotWidth  int
	PlotHeight int
	PenSize    int
}

type Session struct {
	cfg Config

	reader *ptr.Ptr
	punch  *ptp.Ptp
	tty    *tty.Tty
	plot   *plotter.Plotter

	abandon int64  // live abandonment bound; a trace window moves it
	monLast uint32 // last observed value of the monitored location

	intSig chan os.Signal
}

// New builds a session and attaches its peripherals to the CPU.
func New(cfg Config) *Session {
	s := &Session{
		cfg:     cfg,
		reader:  ptr.New(cfg.ReaderPath),
		punch:   ptp.New(cfg.PunchPath),
		tty:     tty.New(cfg.TTYInPath),
		plot:    plotter.New(cfg.PlotPath, cfg.PlotWidth, cfg.PlotHeight, cfg.PenSize),
		abandon: cfg.Abandon,
		intSig:  make(chan os.Signal, 1),
	}
	cpu.SetDevices(s.reader, s.punch, s.tty, s.plot)
	signal.Notify(s.intSig, os.Interrupt)
	return s
}

// Prime sets the machine up ready to execute: cleared store overlaid
// with any persisted image, initial orders reinstalled, SCR set from
// the operator's jump keys.
func (s *Session) Prime() error {
	cpu.InitializeCPU()
	if err := store.Load(s.cfg.StorePath); err != nil {
		return err
	}
	store.LoadInitialOrders()
	cpu.SetSCR(s.cfg.JumpAddr)
	if s.cfg.Monitor >= 0 {
		s.monLast = store.GetMemory(uint32(s.cfg.Monitor))
	}
	debug.Debugf("Core", debug.General, "Starting execution from location %s",
		cpu.FormatAddr(s.cfg.JumpAddr))
	return nil
}

// StepOne executes one instruction and the per-instruction checks:
// monitoring, trace activation, diagnostics, abandonment, dynamic
// stop and host interrupt.
func (s *Session) StepOne() (cpu.Stop, error) {
	stop, err := cpu.Step()
	if err != nil {
		return cpu.StopNone, err
	}
	if stop != cpu.StopNone {
		return stop, nil
	}

	// check for change of the monitored location
	if s.cfg.Monitor >= 0 {
		now := store.GetMemory(uint32(s.cfg.Monitor))
		if now != s.monLast {
			debug.Printf("Monitored location changed from %d to %d\n", s.monLast, now)
			s.monLast = now
			cpu.ArmTrace()
		}
	}

	// check to see if diagnostic tracing should start
	iCount := cpu.ICount()
	if int64(cpu.LastSCR()) == s.cfg.TraceFrom ||
		(s.cfg.TraceAfter != -1 && iCount >= s.cfg.TraceAfter) {
		cpu.SetTracing(true)
	}
	if iCount == s.cfg.TraceWindow {
		cpu.SetTracing(true)
		s.abandon = iCount + 1000 // trace 1000 instructions then abandon
	}

	// print diagnostics if required
	if cpu.TraceArmed() {
		s.tty.FlushLine()
		cpu.ClearTrace()
		cpu.Diagnose()
	} else if cpu.Tracing() && debug.Enabled(debug.Instr) {
		s.tty.FlushLine()
		cpu.Diagnose()
	}

	// check for limits
	if s.abandon != -1 && iCount >= s.abandon {
		s.tty.FlushLine()
		debug.Debugf("Core", debug.General, "Instruction limit reached")
		return cpu.StopLimit, nil
	}

	// check for dynamic stop
	if cpu.SCR() == cpu.LastSCR() {
		s.tty.FlushLine()
		debug.Debugf("Core", debug.General, "Dynamic stop at %s",
			cpu.FormatAddr(cpu.LastSCR()))
		if err := s.writeStopFile(); err != nil {
			return cpu.StopNone, err
		}
		return cpu.StopDynamic, nil
	}

	select {
	case <-s.intSig:
		s.tty.FlushLine()
		fmt.Fprintln(os.Stderr, "*** Execution terminated by interrupt")
		return cpu.StopNone, ErrInterrupted
	default:
	}
	return cpu.StopNone, nil
}

// Resume runs the machine until it stops.
func (s *Session) Resume() (cpu.Stop, error) {
	for {
		stop, err := s.StepOne()
		if stop != cpu.StopNone || err != nil {
			return stop, err
		}
	}
}

// Run drives a whole batch session and returns the process exit code.
func (s *Session) Run() int {
	stop, err := s.Resume()
	return s.Finish(stop, err)
}

// Finish tears the session down: report, persist, close. It returns
// the process exit code for the stop condition. A machine fault leaves
// the store indeterminate, so nothing is persisted for it; a host
// interrupt still writes the durable state back.
func (s *Session) Finish(stop cpu.Stop, err error) int {
	exitCode := stop.ExitCode()
	var mach *cpu.MachineError
	fault := errors.As(err, &mach)
	if err != nil {
		exitCode = 1
		s.tty.FlushLine()
		if fault {
			debug.Printf("*** %s\n", mach.Reason)
			cpu.Diagnose()
		} else if !errors.Is(err, ErrInterrupted) {
			fmt.Fprintf(os.Stderr, "*** %v\n", err)
		}
	}

	if debug.Enabled(debug.General) {
		debug.Printf("exit code %d\n", exitCode)
		cpu.PrintStatistics(debug.Writer())
	}

	persist := store.Valid() && !fault // a fault leaves the store indeterminate
	if persist {
		s.tty.FlushLine()
		if perr := store.Persist(s.cfg.StorePath); perr != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", perr)
			exitCode = 1
		}
		debug.Debugf("Core", debug.General, "Copying over residual input to %s", s.cfg.SavePath)
		if perr := s.reader.Residual(s.cfg.SavePath); perr != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", perr)
			exitCode = 1
		}
	}

	s.reader.Close()
	s.tty.Close()
	s.punch.Close()
	if s.plot.Used() {
		if perr := s.plot.Save(); perr != nil {
			fmt.Fprintf(os.Stderr, "*** %v\n", perr)
			exitCode = 1
		}
	}
	signal.Stop(s.intSig)

	debug.Debugf("Core", debug.General, "Exiting %d", exitCode)
	return exitCode
}

// Teletype returns the session's teletype, so diagnostics produced
// outside the loop can flush a part-written line first.
func (s *Session) Teletype() *tty.Tty {
	return s.tty
}

func (s *Session) writeStopFile() error {
	if err := os.WriteFile(s.cfg.StopPath, []byte(fmt.Sprintf("%d", cpu.LastSCR())), 0o644); err != nil {
		return fmt.Errorf("could not open stop file for writing %s: %w", s.cfg.StopPath, err)
	}
	return nil
}
