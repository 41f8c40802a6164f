/*
 * E900 - Instruction formatting.
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

// Package disassemble renders store words as 900-series order code,
// the "/f a" notation of the Elliott programming manuals: a slash for
// B-modification, then the function code and the address field.
package disassemble

import (
	"fmt"

	cpu "github.com/hbeckett/E900/emu/cpu"
)

var names = [16]string{
	"load B",
	"add",
	"negate and add",
	"store Q",
	"load A",
	"store A",
	"collate",
	"jump if zero",
	"jump",
	"jump if negative",
	"count",
	"store S",
	"multiply",
	"divide",
	"shift",
	"input/output",
}

// Disassemble renders one instruction word.
func Disassemble(word uint32) string {
	f := (word >> cpu.FnShift) & cpu.FnMask
	a := word & cpu.AddrMask
	slash := " "
	if word >= cpu.SignBit {
		slash = "/"
	}
	return fmt.Sprintf("%s%2d %4d  %s", slash, f, a, names[f])
}
