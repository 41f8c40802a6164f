/*
 * E900 - Diagnostic reporting.
 *
 * Copyright 2025, Hugh Beckett
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package debug

import (
	"fmt"
	"io"
	"os"
)

// Verbosity bits, OR-composable via the -v option.
const (
	General = 1 // general diagnostic reports
	Jumps   = 2 // report jumps taken while tracing
	Instr   = 4 // report every instruction while tracing
	IO      = 8 // report input/output characters
)

var (
	out  io.Writer = os.Stderr
	mask int
)

// Direct diagnostics to w instead of stderr.
func SetOutput(w io.Writer) {
	out = w
}

// Set the verbosity bitmask.
func SetMask(m int) {
	mask = m
}

func Mask() int {
	return mask
}

// Report whether a verbosity bit is active.
func Enabled(level int) bool {
	return (mask & level) != 0
}

// Writer returns the diagnostic stream for preformatted output
// such as trace lines and the run summary.
func Writer() io.Writer {
	return out
}

// Generic debug message, gated on the verbosity mask.
func Debugf(module string, level int, format string, a ...interface{}) {
	if (mask & level) != 0 {
		fmt.Fprintf(out, module+": "+format+"\n", a...)
	}
}

// Ungated message to the diagnostic stream.
func Printf(format string, a ...interface{}) {
	fmt.Fprintf(out, format, a...)
}
