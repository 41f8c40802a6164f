/*
   E900 CPU definitions.

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

package cpu

import (
	"fmt"

	dev "github.com/hbeckett/E900/emu/device"
)

const (
	Mask18  = 0o777777  // 18-bit word
	SignBit = 0o400000  // sign bit of a word; B-modification flag of an instruction
	Bit19   = 0o1000000 // 2^18, for sign extension into wider intermediates
	Mask16  = 0o177777

	AddrMask = 8191     // 13-bit address field
	ModMask  = 0o160000 // module bits of an address
	ModShift = 13
	FnMask   = 15
	FnShift  = 13

	// Locations of the SCR and B register for priority levels 1 and 4.
	// Both live in the store itself.
	ScrLevel1  = 0
	ScrLevel4  = 6
	BregLevel1 = 1
	BregLevel4 = 7
)

// Function 15 sub-addresses.
const (
	ioReadTape  = 2048
	ioReadTTY   = 2052
	ioPlotter   = 4864
	ioPunchTape = 6144
	ioWriteTTY  = 6148
	ioLevelTerm = 7168
)

// Stop describes why the machine came to rest. Every orderly stop has
// its own process exit code so calling scripts can branch on it.
type Stop int

const (
	StopNone    Stop = iota
	StopDynamic      // instruction jumped to itself
	StopReader       // paper tape reader exhausted
	StopTTY          // teletype input exhausted
	StopLimit        // instruction limit reached
	StopPunch        // punch output limit reached
)

// ExitCode maps a stop onto the emulator's exit code.
func (s Stop) ExitCode() int {
	switch s {
	case StopNone, StopDynamic:
		return 0
	case StopReader:
		return 2
	case StopTTY:
		return 4
	case StopLimit:
		return 8
	case StopPunch:
		return 16
	}
	return 1
}

func (s Stop) String() string {
	switch s {
	case StopDynamic:
		return "dynamic stop"
	case StopReader:
		return "reader stop"
	case StopTTY:
		return "teletype stop"
	case StopLimit:
		return "instruction limit"
	case StopPunch:
		return "punch overflow"
	}
	return "running"
}

// MachineError is a fatal emulator fault. The store contents are
// considered indeterminate afterwards and are not written back.
type MachineError struct {
	Reason      string
	ICount      int64
	SCR         uint32
	Instruction uint32
}

func (e *MachineError) Error() string {
	return e.Reason
}

type cpu struct {
	aReg uint32 // accumulator
	qReg uint32 // auxiliary accumulator, low half of A:Q

	level  int    // priority level, 1 or 4
	scAddr uint32 // store address of SCR for current level
	bAddr  uint32 // store address of B register for current level

	lastSCR     uint32 // address of instruction being executed
	instruction uint32
	f           uint32 // function code
	a           uint32 // address field with module bits
	m           uint32 // effective address

	iCount int64     // instructions executed
	fCount [16]int64 // executions of each function code
	emTime int64     // estimated elapsed machine time in microseconds

	tracing  bool // instruction tracing active
	traceOne bool // trace the current instruction only

	reader dev.Reader
	punch  dev.Punch
	tty    dev.Teletype
	plot   dev.Plotter
}

var cpuState cpu

func (c *cpu) fault(format string, args ...interface{}) error {
	return &MachineError{
		Reason:      fmt.Sprintf(format, args...),
		ICount:      c.iCount,
		SCR:         c.lastSCR,
		Instruction: c.instruction,
	}
}
