/* E900 paper tape reader.

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

   The input file is a raw byte stream of eight bit paper tape codes,
   either binary or one of the Elliott telecodes. The file is opened on
   first demand so a run that never reads tape never touches it. Bytes
   left unread at the end of a run are copied to the save file, to
   emulate leaving a tape in the reader between runs.
*/

package ptr

import (
	"errors"
	"fmt"
	"io"
	"os"

	dev "github.com/hbeckett/E900/emu/device"
	debug "github.com/hbeckett/E900/util/debug"
)

type Ptr struct {
	path string   // tape image to read
	file *os.File // nil until first demand
	eof  bool
}

func New(path string) *Ptr {
	return &Ptr{path: path}
}

// Read one character from the tape. Running off the end of the tape
// stops the machine with dev.ErrReaderStop.
func (ptr *Ptr) ReadByte() (byte, error) {
	if ptr.file == nil {
		file, err := os.Open(ptr.path)
		if err != nil {
			return 0, fmt.Errorf("cannot open paper tape input file %s: %w", ptr.path, err)
		}
		ptr.file = file
		debug.Debugf("PTR", debug.General, "Paper tape reader file %s opened", ptr.path)
	}
	var buf [1]byte
	_, err := ptr.file.Read(buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			ptr.eof = true
			return 0, dev.ErrReaderStop
		}
		return 0, fmt.Errorf("error reading %s: %w", ptr.path, err)
	}
	return buf[0], nil
}

// Residual copies any unconsumed tape to path, preserving it for the
// next run. A reader that was never opened leaves an empty save file.
func (ptr *Ptr) Residual(path string) error {
	save, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open save file for writing %s: %w", path, err)
	}
	defer save.Close()
	if ptr.file != nil && !ptr.eof {
		if _, err := io.Copy(save, ptr.file); err != nil {
			return fmt.Errorf("error saving residual tape to %s: %w", path, err)
		}
	}
	return save.Close()
}

func (ptr *Ptr) Close() error {
	if ptr.file == nil {
		return nil
	}
	err := ptr.file.Close()
	ptr.file = nil
	return err
}
