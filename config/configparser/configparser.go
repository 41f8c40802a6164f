/*
 * E900 - Settings file parser.
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

// Package configparser reads a settings file of name=value lines, one
// option per line. Blank lines and lines starting with # are skipped;
// values may be double-quoted to carry spaces. The options mirror the
// command-line surface, so batch scripts can keep per-machine settings
// in a file:
//
//	# ALGOL run
//	reader=algol/tape1
//	store=".store"
//	verbose=1
package configparser

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// One option line.
type Option struct {
	Name  string
	Value string
}

// LoadConfigFile parses the named settings file.
func LoadConfigFile(name string) ([]Option, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var options []Option
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		option, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNum, err)
		}
		if ok {
			options = append(options, option)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return options, nil
}

func parseLine(text string) (Option, bool, error) {
	line := strings.TrimSpace(text)
	if line == "" || strings.HasPrefix(line, "#") {
		return Option{}, false, nil
	}
	name, value, found := strings.Cut(line, "=")
	if !found {
		return Option{}, false, fmt.Errorf("expected name=value, got %q", line)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Option{}, false, fmt.Errorf("missing option name in %q", line)
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "\"") {
		if len(value) < 2 || !strings.HasSuffix(value, "\"") {
			return Option{}, false, fmt.Errorf("unterminated quote in %q", line)
		}
		value = value[1 : len(value)-1]
	}
	return Option{Name: name, Value: value}, true, nil
}
