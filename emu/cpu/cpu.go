/*
   E900 CPU.

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
	"errors"

	dev "github.com/hbeckett/E900/emu/device"
	mem "github.com/hbeckett/E900/emu/store"
	debug "github.com/hbeckett/E900/util/debug"
)

/*
   The Elliott 903 is an 18-bit word-addressed machine. An instruction
   holds a B-modification flag, a 4-bit function code and a 13-bit
   address field:

      +-+----+-------------+
      |B| fn |   address   |
      +-+----+-------------+
       17 16-13    12-0

   The effective address inherits the module bits (the high bits of the
   14-bit store address) from the location the instruction was fetched
   from, so code addresses its own 8K module unless B-modification
   carries it further.

   The SCR and B register live in the store at addresses selected by
   the priority level; user code can read and write them as ordinary
   store words and the two views are the same bits.
*/

// Initialize CPU to the state at operator start: priority level 1,
// cleared accumulators, counters at zero, initial orders protected.
func InitializeCPU() {
	cpuState.aReg = 0
	cpuState.qReg = 0
	cpuState.level = 1
	cpuState.scAddr = ScrLevel1
	cpuState.bAddr = BregLevel1
	cpuState.lastSCR = 0
	cpuState.instruction = 0
	cpuState.f = 0
	cpuState.a = 0
	cpuState.m = 0
	cpuState.iCount = 0
	cpuState.emTime = 0
	cpuState.tracing = false
	cpuState.traceOne = false
	for i := range cpuState.fCount {
		cpuState.fCount[i] = 0
	}
	mem.SetProtect(true)
}

// Attach the peripherals reached through function 15.
func SetDevices(reader dev.Reader, punch dev.Punch, tty dev.Teletype, plot dev.Plotter) {
	cpuState.reader = reader
	cpuState.punch = punch
	cpuState.tty = tty
	cpuState.plot = plot
}

// Sign extend an 18-bit word.
func signed(w uint32) int64 {
	if w >= SignBit {
		return int64(w) - Bit19
	}
	return int64(w)
}

// Set the SCR from the operator's jump keys.
func SetSCR(addr uint32) {
	mem.SetMemory(cpuState.scAddr, addr)
}

// Execute one instruction.
func Step() (Stop, error) {
	c := &cpuState
	c.iCount++

	// increment SCR
	c.lastSCR = mem.GetMemory(c.scAddr)
	mem.SetMemory(c.scAddr, c.lastSCR+1)
	if c.lastSCR >= mem.Size {
		return StopNone, c.fault("address outside of available store (%d)", c.lastSCR)
	}

	// fetch and decode instruction
	c.instruction = mem.GetMemory(c.lastSCR)
	c.f = (c.instruction >> FnShift) & FnMask
	c.a = (c.instruction & AddrMask) | (c.lastSCR & ModMask)
	c.fCount[c.f]++

	// perform B modification if needed
	if c.instruction >= SignBit {
		c.m = (c.a + mem.GetMemory(c.bAddr)) & Mask16
		c.emTime += 6
	} else {
		c.m = c.a & Mask16
	}

	return c.execute()
}

// Perform the function determined by the function code.
func (c *cpu) execute() (Stop, error) {
	m := c.m
	switch c.f {

	case 0: // Load B
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		c.qReg = mem.GetMemory(m)
		mem.SetMemory(c.bAddr, c.qReg)
		c.emTime += 30

	case 1: // Add
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		c.aReg = (c.aReg + mem.GetMemory(m)) & Mask18
		c.emTime += 23

	case 2: // Negate and add
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		c.qReg = mem.GetMemory(m)
		c.aReg = (c.qReg - c.aReg) & Mask18
		c.emTime += 26

	case 3: // Store Q
		if mem.PutWord(m, c.qReg>>1) {
			return StopNone, c.addressFault(m)
		}
		c.emTime += 25

	case 4: // Load A
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		c.aReg = mem.GetMemory(m)
		c.emTime += 23

	case 5: // Store A
		if mem.PutWord(m, c.aReg) {
			return StopNone, c.addressFault(m)
		}
		c.emTime += 25

	case 6: // Collate
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		c.aReg &= mem.GetMemory(m)
		c.emTime += 23

	case 7: // Jump if zero
		if c.aReg == 0 {
			c.traceOne = c.tracing && debug.Enabled(debug.Jumps)
			mem.SetMemory(c.scAddr, m)
			c.emTime += 28
		}
		if c.aReg > 0 {
			c.emTime += 21
		} else {
			c.emTime += 20
		}

	case 8: // Jump unconditional
		mem.SetMemory(c.scAddr, m)
		c.emTime += 23

	case 9: // Jump if negative
		if c.aReg >= SignBit {
			c.traceOne = c.tracing && debug.Enabled(debug.Jumps)
			mem.SetMemory(c.scAddr, m)
			c.emTime += 25
		}
		c.emTime += 20

	case 10: // Increment in store
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		mem.PutWord(m, (mem.GetMemory(m)+1)&Mask18)
		c.emTime += 24

	case 11: // Store S
		scr := mem.GetMemory(c.scAddr)
		c.qReg = scr & ModMask
		if mem.PutWord(m, scr&AddrMask) {
			return StopNone, c.addressFault(m)
		}
		c.emTime += 30

	case 12: // Multiply
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		al := signed(c.aReg)
		sl := signed(mem.GetMemory(m))
		prod := al * sl
		c.qReg = uint32((prod << 1) & Mask18)
		if al < 0 {
			c.qReg |= 1
		}
		c.aReg = uint32((prod >> 17) & Mask18)
		c.emTime += 79

	case 13: // Divide
		if !mem.CheckAddr(m) {
			return StopNone, c.addressFault(m)
		}
		ml := signed(mem.GetMemory(m))
		if ml == 0 {
			return StopNone, c.fault("divide by zero")
		}
		aql := (signed(c.aReg) << 18) | int64(c.qReg)
		quot := ((aql / ml) >> 1) & Mask18
		c.aReg = uint32(quot) | 1
		c.qReg = uint32(quot) & 0o777776
		c.emTime += 79

	case 14: // Shift. A and Q shift together as a 36-bit register.
		places := int64(m & AddrMask)
		aql := (signed(c.aReg) << 18) | int64(c.qReg)
		switch {
		case places <= 2047:
			c.emTime += 24 + 7*places
			if places >= 36 {
				places = 36
			}
			aql <<= uint(places)
		case places >= 6144:
			places = 8192 - places
			c.emTime += 24 + 7*places
			if places >= 36 {
				places = 36
			}
			aql >>= uint(places) // arithmetic
		default:
			return StopNone, c.fault("unsupported shift of %d places", places)
		}
		c.qReg = uint32(aql & Mask18)
		c.aReg = uint32((aql >> 18) & Mask18)

	case 15: // Input/output etc
		return c.inOut()
	}
	return StopNone, nil
}

// Dispatch a function 15 operation on its sub-address.
func (c *cpu) inOut() (Stop, error) {
	z := c.m & AddrMask
	switch z {

	case ioReadTape:
		ch, err := c.reader.ReadByte()
		if err != nil {
			return c.devStop(err)
		}
		if debug.Enabled(debug.IO) {
			c.tty.FlushLine()
			c.traceOne = true
			debug.Debugf("PTR", debug.IO, "Paper tape character %3d read", ch)
		}
		c.aReg = ((c.aReg << 7) | uint32(ch)) & Mask18
		c.emTime += 4000 // 250 ch/s reader

	case ioReadTTY:
		ch, err := c.tty.ReadByte()
		if err != nil {
			return c.devStop(err)
		}
		if debug.Enabled(debug.IO) {
			c.tty.FlushLine()
			c.traceOne = true
			debug.Debugf("TTY", debug.IO, "Read character %d from teletype", ch)
		}
		c.aReg = ((c.aReg << 7) | uint32(ch)) & Mask18
		c.emTime += 100000 // 10 ch/s teletype

	case ioPlotter:
		c.plot.Move(c.aReg)
		if c.aReg >= 16 {
			c.emTime += 20000 // 20ms per pen command
		} else {
			c.emTime += 3300 // 3.3ms per step
		}

	case ioPunchTape:
		ch := uint8(c.aReg & 255)
		if err := c.punch.WriteByte(ch); err != nil {
			return c.devStop(err)
		}
		if debug.Enabled(debug.IO) {
			c.tty.FlushLine()
			c.traceOne = true
			debug.Debugf("PTP", debug.IO, "Paper tape character %d punched", ch)
		}
		c.emTime += 9091 // 110 ch/s punch

	case ioWriteTTY:
		ch := uint8(c.aReg & 255)
		if debug.Enabled(debug.IO) {
			c.tty.FlushLine()
			c.traceOne = true
			if tchar := ch & 127; dev.PrintableTTY(tchar) {
				debug.Debugf("TTY", debug.IO, "Character %d output to teletype (%c)", ch, tchar)
			} else {
				debug.Debugf("TTY", debug.IO, "Character %d output to teletype - ignored", ch)
			}
		}
		c.tty.WriteByte(ch)
		c.emTime += 100000

	case ioLevelTerm:
		c.level = 4
		c.scAddr = ScrLevel4
		c.bAddr = BregLevel4
		mem.SetProtect(false)
		c.emTime += 19

	default:
		return StopNone, c.fault("unsupported 15 i/o instruction (%d)", z)
	}
	return StopNone, nil
}

// Translate an end-of-media error into the matching stop.
func (c *cpu) devStop(err error) (Stop, error) {
	switch {
	case errors.Is(err, dev.ErrReaderStop):
		debug.Debugf("PTR", debug.General, "Run off end of input tape")
		return StopReader, nil
	case errors.Is(err, dev.ErrTTYStop):
		debug.Debugf("TTY", debug.General, "Run off end of teleprinter input")
		return StopTTY, nil
	case errors.Is(err, dev.ErrPunchLimit):
		debug.Debugf("PTP", debug.General, "Excessive output")
		return StopPunch, nil
	}
	return StopNone, c.fault("%v", err)
}

func (c *cpu) addressFault(addr uint32) error {
	return c.fault("address outside of available store (%d)", addr)
}

// Accessors for the session manager, the console and the tests.

func ICount() int64 {
	return cpuState.iCount
}

func FCounts() [16]int64 {
	return cpuState.fCount
}

func Elapsed() int64 {
	return cpuState.emTime
}

// SCR reads the current sequence control register from the store.
func SCR() uint32 {
	return mem.GetMemory(cpuState.scAddr)
}

// LastSCR is the address of the instruction just executed.
func LastSCR() uint32 {
	return cpuState.lastSCR
}

func Level() int {
	return cpuState.level
}

// Registers returns A, Q and the current B register value.
func Registers() (a, q, b uint32) {
	return cpuState.aReg, cpuState.qReg, mem.GetMemory(cpuState.bAddr)
}

func SetTracing(on bool) {
	cpuState.tracing = on
}

func Tracing() bool {
	return cpuState.tracing
}

// ArmTrace requests a one-shot trace of the instruction just executed.
func ArmTrace() {
	cpuState.traceOne = true
}

func TraceArmed() bool {
	return cpuState.traceOne
}

func ClearTrace() {
	cpuState.traceOne = false
}
