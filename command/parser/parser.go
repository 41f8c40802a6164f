/*
 * E900 - Front panel command parser.
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

// Package parser interprets front panel commands. A physical 903 had
// operator keys for exactly these jobs: examining and setting store
// words, reading the registers, and starting the machine.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	core "github.com/hbeckett/E900/emu/core"
	cpu "github.com/hbeckett/E900/emu/cpu"
	disassemble "github.com/hbeckett/E900/emu/disassemble"
	store "github.com/hbeckett/E900/emu/store"
)

type command struct {
	name    string
	help    string
	process func(args []string, session *core.Session) (bool, error)
}

var commands []command

func init() {
	commands = []command{
		{"deposit", "deposit <addr> <value>  set a store word", cmdDeposit},
		{"examine", "examine <addr> [count]  print store words", cmdExamine},
		{"go", "go                      run until the machine stops", cmdGo},
		{"help", "help                    list commands", cmdHelp},
		{"quit", "quit                    finish the session", cmdQuit},
		{"registers", "registers               print A, Q, B and SCR", cmdRegisters},
		{"step", "step [n]                execute n instructions", cmdStep},
	}
}

// ProcessCommand runs one console command. It reports whether the
// session should finish.
func ProcessCommand(commandLine string, session *core.Session) (bool, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.ToLower(fields[0])
	var match *command
	for i := range commands {
		if strings.HasPrefix(commands[i].name, name) {
			if match != nil {
				return false, fmt.Errorf("ambiguous command %q", name)
			}
			match = &commands[i]
		}
	}
	if match == nil {
		return false, fmt.Errorf("unknown command %q", name)
	}
	return match.process(fields[1:], session)
}

// CompleteCmd offers completions for a part-typed command name.
func CompleteCmd(line string) []string {
	var matches []string
	lower := strings.ToLower(line)
	for _, c := range commands {
		if strings.HasPrefix(c.name, lower) {
			matches = append(matches, c.name)
		}
	}
	return matches
}

func getAddr(arg string) (uint32, error) {
	addr, err := cpu.ParseAddr(arg)
	if err != nil {
		return 0, err
	}
	if addr < 0 || addr >= store.Size {
		return 0, fmt.Errorf("address %s outside store bounds", arg)
	}
	return uint32(addr), nil
}

func cmdExamine(args []string, _ *core.Session) (bool, error) {
	if len(args) < 1 {
		return false, errors.New("examine needs an address")
	}
	addr, err := getAddr(args[0])
	if err != nil {
		return false, err
	}
	count := 1
	if len(args) > 1 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 1 {
			return false, fmt.Errorf("bad count %q", args[1])
		}
	}
	for i := 0; i < count && addr < store.Size; i++ {
		w := store.GetMemory(addr)
		fmt.Printf("%s  &%06o  %8d  %s\n", cpu.FormatAddr(addr), w, w,
			disassemble.Disassemble(w))
		addr++
	}
	return false, nil
}

func cmdDeposit(args []string, _ *core.Session) (bool, error) {
	if len(args) != 2 {
		return false, errors.New("deposit needs an address and a value")
	}
	addr, err := getAddr(args[0])
	if err != nil {
		return false, err
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return false, fmt.Errorf("bad value %q", args[1])
	}
	store.SetMemory(addr, uint32(value))
	return false, nil
}

func cmdRegisters(_ []string, _ *core.Session) (bool, error) {
	a, q, b := cpu.Registers()
	fmt.Printf("A=%+8d (&%06o) Q=%+8d (&%06o) B=%+7d SCR=%s level %d\n",
		signed(a), a, signed(q), q, signed(b), cpu.FormatAddr(cpu.SCR()), cpu.Level())
	return false, nil
}

func cmdStep(args []string, session *core.Session) (bool, error) {
	count := int64(1)
	if len(args) > 0 {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || n < 1 {
			return false, fmt.Errorf("bad count %q", args[0])
		}
		count = n
	}
	for i := int64(0); i < count; i++ {
		stop, err := session.StepOne()
		if err != nil {
			return false, err
		}
		cpu.Diagnose()
		if stop != cpu.StopNone {
			fmt.Printf("Machine stopped: %s\n", stop)
			break
		}
	}
	return false, nil
}

func cmdGo(_ []string, session *core.Session) (bool, error) {
	stop, err := session.Resume()
	if err != nil {
		return false, err
	}
	fmt.Printf("Machine stopped: %s\n", stop)
	return false, nil
}

func cmdHelp(_ []string, _ *core.Session) (bool, error) {
	for _, c := range commands {
		fmt.Println("  " + c.help)
	}
	return false, nil
}

func cmdQuit(_ []string, _ *core.Session) (bool, error) {
	return true, nil
}

func signed(w uint32) int64 {
	if w >= cpu.SignBit {
		return int64(w) - cpu.Bit19
	}
	return int64(w)
}
