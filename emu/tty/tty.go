/* E900 teletype.

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

   Input is taken from a file of raw bytes; each character read is
   echoed locally. Output goes to the host's standard output, filtered
   down to linefeed and the printable range the teleprinter could
   actually strike. Diagnostics interleave with teletype output, so an
   unfinished output line is flushed before any report is printed.
*/

package tty

import (
	"errors"
	"fmt"
	"io"
	"os"

	dev "github.com/hbeckett/E900/emu/device"
	debug "github.com/hbeckett/E900/util/debug"
)

// Input limit, same one-reel bound as the punch.
const reel = 10 * 12 * 1000

type Tty struct {
	inPath string
	in     *os.File  // nil until first demand
	out    io.Writer // host stdout
	last   int       // last character written, -1 when line complete
	count  int       // characters read this run
}

func New(inPath string) *Tty {
	return &Tty{inPath: inPath, out: os.Stdout, last: -1}
}

// Redirect teleprinter output, used by the tests.
func (tty *Tty) SetOutput(w io.Writer) {
	tty.out = w
}

// Read one character from teletype input, echoing it to the host.
func (tty *Tty) ReadByte() (byte, error) {
	if tty.count >= reel {
		return 0, dev.ErrPunchLimit
	}
	tty.count++
	if tty.in == nil {
		file, err := os.Open(tty.inPath)
		if err != nil {
			return 0, fmt.Errorf("cannot open teletype input file %s: %w", tty.inPath, err)
		}
		tty.in = file
		debug.Debugf("TTY", debug.General, "Teletype input file %s opened", tty.inPath)
	}
	var buf [1]byte
	_, err := tty.in.Read(buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, dev.ErrTTYStop
		}
		return 0, fmt.Errorf("error reading %s: %w", tty.inPath, err)
	}
	fmt.Fprintf(tty.out, "%c", buf[0]&127) // local echo, ASCII assumed
	return buf[0], nil
}

// Write one character to the teleprinter. Only linefeed and the
// printable range 32..122 are struck; anything else is dropped.
func (tty *Tty) WriteByte(ch byte) {
	ch &= 127
	if !dev.PrintableTTY(ch) {
		return
	}
	fmt.Fprintf(tty.out, "%c", ch)
	tty.last = int(ch)
}

// FlushLine forces out an unfinished output line.
func (tty *Tty) FlushLine() {
	if tty.last != -1 && tty.last != '\n' {
		fmt.Fprintln(tty.out)
		tty.last = -1
	}
}

func (tty *Tty) Close() error {
	if tty.in == nil {
		return nil
	}
	err := tty.in.Close()
	tty.in = nil
	return err
}
