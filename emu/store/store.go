package store

/*
 * E900 - Core store.
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

import (
	debug "github.com/hbeckett/E900/util/debug"
)

const (
	Size = 16384 // 16K of 18-bit words

	Mask18 = 0o777777 // 18-bit word mask

	// The initial orders occupy the top of the first 8K store module and
	// are reinstalled at every session start.
	IOrdersBase = 8180
	IOrdersTop  = 8191
)

type mem struct {
	mem     [Size]uint32
	valid   bool // set once an image is loaded; a later exit writes it back
	protect bool // level 1 active: writes into the initial orders ignored
}

var store mem

// Clear the store to all zeros.
func Clear() {
	for i := range store.mem {
		store.mem[i] = 0
	}
	debug.Debugf("Store", debug.General, "Store (%d words) cleared", Size)
}

// Check if address out of range.
func CheckAddr(addr uint32) bool {
	return addr < Size
}

// Get memory value without range check.
func GetMemory(addr uint32) uint32 {
	return store.mem[addr]
}

// Set memory to a value, without range check or write protection.
// Used for the register cells and by the loaders.
func SetMemory(addr, data uint32) {
	store.mem[addr] = data & Mask18
}

// Put a word to memory. Returns true if the address is out of range.
// Writes into the initial orders block are silently ignored while
// priority level 1 is active.
func PutWord(addr, data uint32) bool {
	if addr >= Size {
		return true
	}
	if store.protect && addr >= IOrdersBase && addr <= IOrdersTop {
		debug.Debugf("Store", debug.General,
			"Write to initial instructions ignored in priority level 1")
		return false
	}
	store.mem[addr] = data & Mask18
	return false
}

// Enable or disable level-1 write protection of the initial orders.
func SetProtect(on bool) {
	store.protect = on
}

// Record whether the store holds a usable image. Only a valid store is
// written back at the end of a run.
func SetValid(v bool) {
	store.valid = v
}

func Valid() bool {
	return store.valid
}

// Build an instruction word from B-modification flag, function code
// and address field.
func MakeIns(m, f, a uint32) uint32 {
	return (m << 17) | (f << 13) | a
}

// Load the initial orders. These implement the bootstrap that reads a
// self-unpacking tape into memory.
func LoadInitialOrders() {
	store.mem[8180] = (-3) & Mask18
	store.mem[8181] = MakeIns(0, 0, 8180)
	store.mem[8182] = MakeIns(0, 4, 8189)
	store.mem[8183] = MakeIns(0, 15, 2048)
	store.mem[8184] = MakeIns(0, 9, 8186)
	store.mem[8185] = MakeIns(0, 8, 8183)
	store.mem[8186] = MakeIns(0, 15, 2048)
	store.mem[8187] = MakeIns(1, 5, 8180)
	store.mem[8188] = MakeIns(0, 10, 1)
	store.mem[8189] = MakeIns(0, 4, 1)
	store.mem[8190] = MakeIns(0, 9, 8182)
	store.mem[8191] = MakeIns(0, 8, 8177)
	debug.Debugf("Store", debug.General, "Initial orders loaded")
}
