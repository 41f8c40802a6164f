/* E900 incremental flat-bed plotter.

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

   The head moves one 0.1mm step at a time under command of the low six
   bits of the accumulator. While the pen is down each step blackens a
   square of paper around the head. The paper is an in-memory RGB
   raster, flushed to a PNG file when the session ends.
*/

package plotter

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	debug "github.com/hbeckett/E900/util/debug"
)

// Plotter command bits, low six bits of A.
const (
	StepEast  = 1
	StepWest  = 2
	StepNorth = 4
	StepSouth = 8
	PenUp     = 16
	PenDown   = 32
)

// Default paper geometry in steps. 34cm maximum on the B-L plotter.
const (
	DefaultWidth  = 3600
	DefaultHeight = 3600
	DefaultPen    = 3
)

type Plotter struct {
	path    string
	width   int
	height  int
	penSize int
	penX    int
	penY    int
	penDown bool
	paper   *image.RGBA // nil until the first command
}

func New(path string, width, height, penSize int) *Plotter {
	return &Plotter{path: path, width: width, height: height, penSize: penSize}
}

// Lay out fresh paper and park the pen. Runs once, on first use.
func (plt *Plotter) setup() {
	plt.paper = image.NewRGBA(image.Rect(0, 0, plt.width, plt.height))
	draw.Draw(plt.paper, plt.paper.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	plt.penX = 1500
	plt.penY = plt.height - 200
	plt.penDown = false
	if plt.penSize < 1 {
		plt.penSize = 1
	}
	debug.Debugf("Plotter", debug.General,
		"Starting plotting. Plotter pen size %d", plt.penSize)
}

// Move executes one plotter command.
func (plt *Plotter) Move(bits uint32) {
	if plt.paper == nil {
		plt.setup()
	}

	debug.Debugf("Plotter", debug.IO, "Plotter code %o output", bits&63)

	// hard stop at E and W margins
	if bits&StepEast != 0 && plt.penX < plt.width {
		plt.penX++
	}
	if bits&StepWest != 0 && plt.penX > 0 {
		plt.penX--
	}
	if bits&StepNorth != 0 {
		plt.penY--
	}
	if bits&StepSouth != 0 {
		plt.penY++
	}
	if bits&PenUp != 0 {
		plt.penDown = false
	}
	if bits&PenDown != 0 {
		plt.penDown = true
	}

	if plt.penDown {
		for x := plt.penX - plt.penSize; x <= plt.penX+plt.penSize; x++ {
			for y := plt.penY - plt.penSize; y <= plt.penY+plt.penSize; y++ {
				if y >= 0 && y < plt.height && x >= 0 && x < plt.width {
					plt.paper.SetRGBA(x, y, color.RGBA{A: 255})
				}
			}
		}
	}
}

// Used reports whether any plotter command has been executed.
func (plt *Plotter) Used() bool {
	return plt.paper != nil
}

// Save writes the paper image out as an 8-bit RGB PNG.
func (plt *Plotter) Save() error {
	if plt.paper == nil {
		return nil
	}
	file, err := os.Create(plt.path)
	if err != nil {
		return fmt.Errorf("could not open plotter output file for writing %s: %w", plt.path, err)
	}
	if err := png.Encode(file, plt.paper); err != nil {
		file.Close()
		return fmt.Errorf("error writing plotter output %s: %w", plt.path, err)
	}
	return file.Close()
}

// Position reports the pen head, used by the tests.
func (plt *Plotter) Position() (x, y int, down bool) {
	return plt.penX, plt.penY, plt.penDown
}

// Black reports whether the paper at (x, y) has been plotted.
func (plt *Plotter) Black(x, y int) bool {
	if plt.paper == nil {
		return false
	}
	r, g, b, _ := plt.paper.At(x, y).RGBA()
	return r == 0 && g == 0 && b == 0
}
