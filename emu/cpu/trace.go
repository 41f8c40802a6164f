/*
   E900 diagnostic traces.

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
	"io"

	mem "github.com/hbeckett/E900/emu/store"
	debug "github.com/hbeckett/E900/util/debug"
)

// FormatAddr renders a store address in module form, m^nnnn.
func FormatAddr(addr uint32) string {
	return fmt.Sprintf("%d^%04d", (addr>>ModShift)&7, addr&AddrMask)
}

// ParseAddr reads an address written either as a plain decimal or in
// module form m^n, meaning m*8192+n.
func ParseAddr(s string) (int64, error) {
	var module, address int64
	if s == "" {
		return 0, fmt.Errorf("malformed address %q", s)
	}
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			address = address*10 + int64(ch-'0')
		case ch == '^':
			module = (module + address) * 8192
			address = 0
		default:
			return 0, fmt.Errorf("malformed address %q", s)
		}
	}
	return module + address, nil
}

// FormatTime renders an elapsed microsecond count the way the operators
// log ran: hours, minutes and seconds.
func FormatTime(us int64) string {
	hours := us / 3600000000
	us -= hours * 3600000000
	mins := us / 60000000
	secs := float64(us-mins*60000000) / 1000000
	return fmt.Sprintf("%d hours, %d minutes and %2.2f seconds", hours, mins, secs)
}

// Diagnose prints one trace line for the instruction just executed:
// instruction count, its address, the decoded instruction (a slash
// marks B-modification) and the registers in signed and octal form.
func Diagnose() {
	c := &cpuState
	w := debug.Writer()
	b := mem.GetMemory(c.bAddr)
	an := signed(c.aReg)
	qn := signed(c.qReg)
	bn := signed(b)
	fmt.Fprintf(w, "%10d   ", c.iCount)
	fmt.Fprint(w, FormatAddr(c.lastSCR))
	switch {
	case c.instruction >= SignBit && c.f > 9:
		fmt.Fprint(w, " /")
	case c.instruction >= SignBit:
		fmt.Fprint(w, "  /")
	case c.f > 9:
		fmt.Fprint(w, "  ")
	default:
		fmt.Fprint(w, "   ")
	}
	fmt.Fprintf(w, "%d %4d", c.f, c.a)
	fmt.Fprintf(w, " A=%+8d (&%06o) Q=%+8d (&%06o) B=%+7d (%s)\n",
		an, c.aReg, qn, c.qReg, bn, FormatAddr(b))
}

// PrintStatistics writes the end-of-run report: per-function execution
// counts with percentages, then the instruction total and the estimate
// of elapsed machine time.
func PrintStatistics(w io.Writer) {
	c := &cpuState
	if c.iCount == 0 {
		return
	}
	fmt.Fprintf(w, "Function code count\n")
	for i := range c.fCount {
		fmt.Fprintf(w, "%4d: %8d (%3d%%)", i, c.fCount[i], (c.fCount[i]*100)/c.iCount)
		if i%4 == 3 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "%d instructions executed in %s of simulated time\n",
		c.iCount, FormatTime(c.emTime))
}
