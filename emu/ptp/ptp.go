/* E900 paper tape punch.

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

   Output is the raw byte stream that would have gone to the physical
   punch. A limit of about one reel of tape (1,000 feet at 10 ch/in)
   guards against programs punching in a loop.
*/

package ptp

import (
	"fmt"
	"os"

	dev "github.com/hbeckett/E900/emu/device"
	debug "github.com/hbeckett/E900/util/debug"
)

// Reel of paper tape in characters.
const Reel = 10 * 12 * 1000

type Ptp struct {
	path  string
	file  *os.File // nil until first punch
	count int      // characters punched this run
}

func New(path string) *Ptp {
	return &Ptp{path: path}
}

// Punch one character.
func (ptp *Ptp) WriteByte(ch byte) error {
	if ptp.count >= Reel {
		return dev.ErrPunchLimit
	}
	ptp.count++
	if ptp.file == nil {
		file, err := os.Create(ptp.path)
		if err != nil {
			return fmt.Errorf("cannot open paper tape punch file %s: %w", ptp.path, err)
		}
		ptp.file = file
		debug.Debugf("PTP", debug.General, "Paper tape punch file %s opened", ptp.path)
	}
	if _, err := ptp.file.Write([]byte{ch}); err != nil {
		return fmt.Errorf("problem writing to %s: %w", ptp.path, err)
	}
	return nil
}

func (ptp *Ptp) Close() error {
	if ptp.file == nil {
		return nil
	}
	err := ptp.file.Close()
	ptp.file = nil
	return err
}
