package store

/*
 * E900 - Store image load and dump.
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
	"bufio"
	"fmt"
	"os"
	"strconv"

	debug "github.com/hbeckett/E900/util/debug"
)

// The store image is a text file of decimal integers, one per word,
// seven columns wide and ten to a line. It simulates retention of data
// in core between entry points: a compiler loaded on one run is still
// resident on the next.

// Load reads a store image over a cleared store. A missing file leaves
// the store empty; a malformed or over-long image is fatal. A missing
// file or a fully read image marks the store valid so the exit path
// writes it back; a fatal error returns without marking it.
func Load(path string) error {
	Clear()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			debug.Debugf("Store", debug.General,
				"No %s file found, store left empty", path)
			store.valid = true
			return nil
		}
		return fmt.Errorf("store image %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)
	i := 0
	for scanner.Scan() {
		if i >= Size {
			return fmt.Errorf("%s exceeds store capacity (%d)", path, Size)
		}
		n, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return fmt.Errorf("format error in file %s: %q", path, scanner.Text())
		}
		store.mem[i] = uint32(n) & Mask18
		i++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error while reading %s: %w", path, err)
	}
	debug.Debugf("Store", debug.General, "%d words read in from %s", i, path)
	store.valid = true
	return nil
}

// Persist dumps the store for the next run. The image is written to a
// fresh file and renamed over the previous one, so an interrupted dump
// never corrupts the prior image.
func Persist(path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not open store dump file for writing %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	for i := 0; i < Size; i++ {
		fmt.Fprintf(w, "%7d", store.mem[i])
		if i%10 == 9 {
			fmt.Fprintln(w)
		}
	}
	if Size%10 != 0 {
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	debug.Debugf("Store", debug.General, "%d words written out to %s", Size, path)
	return nil
}
