/*
 * E900 - Main process.
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

// Emulator for the Elliott 903 / 920B.
//
// The emulator runs a single entry of a 900-series program: it reads
// the store image left by the previous entry, jumps to the address set
// on the operator keys, and runs until the program reaches a dynamic
// stop or exhausts its input. Paper tape, teletype and plotter traffic
// go to host files; the store, the unconsumed reader tape and the stop
// address are written back at the end so consecutive entries behave
// like one machine left switched on.
//
// The exit code reports why the run ended: 0 dynamic stop, 1 failure,
// 2 out of reader tape, 4 out of teletype input, 8 instruction limit,
// 16 punch overflow.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	getopt "github.com/pborman/getopt/v2"

	consolereader "github.com/hbeckett/E900/command/reader"
	config "github.com/hbeckett/E900/config/configparser"
	core "github.com/hbeckett/E900/emu/core"
	cpu "github.com/hbeckett/E900/emu/cpu"
	plotter "github.com/hbeckett/E900/emu/plotter"
	store "github.com/hbeckett/E900/emu/store"
	debug "github.com/hbeckett/E900/util/debug"
	logger "github.com/hbeckett/E900/util/logger"
)

// Default file names. The dotted names mimic scratch files a batch
// script leaves in the working directory.
const (
	logFile   = "log.txt"
	rdrFile   = ".reader"
	punFile   = ".punch"
	ttyinFile = ".ttyin"
	storeFile = ".store"
	plotFile  = ".plot.png"
	stopFile  = ".stop"
	saveFile  = ".save"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "settings file")
	optReader := getopt.StringLong("reader", 0, rdrFile, "paper tape reader input", "file")
	optPunch := getopt.StringLong("punch", 0, punFile, "paper tape punch output", "file")
	optTTYIn := getopt.StringLong("ttyin", 0, ttyinFile, "teletype input", "file")
	optPlot := getopt.StringLong("plot", 0, plotFile, "plotter output", "file")
	optStore := getopt.StringLong("store", 0, storeFile, "store image", "file")
	optSave := getopt.StringLong("save", 0, saveFile, "unconsumed reader input", "file")
	optDfile := getopt.BoolLong("dfile", 'd', "diagnostics to "+logFile)
	optAbandon := getopt.Int64Long("abandon", 'a', -1, "abandon after n instructions")
	optHeight := getopt.IntLong("height", 'h', plotter.DefaultHeight, "plotter paper height in steps")
	optJump := getopt.IntLong("jump", 'j', 8181, "jump to address")
	optMonitor := getopt.StringLong("monitor", 'm', "", "monitor location", "address")
	optPen := getopt.IntLong("pen", 'p', plotter.DefaultPen, "plotter pen size in steps")
	optRtrace := getopt.Int64Long("rtrace", 'r', -1, "trace 1000 instructions after first n")
	optStart := getopt.StringLong("start", 's', "", "start tracing at location", "address")
	optTrace := getopt.Int64Long("trace", 't', -1, "turn on tracing after n instructions")
	optWidth := getopt.IntLong("width", 'w', plotter.DefaultWidth, "plotter paper width in steps")
	optVerbose := getopt.IntLong("verbose", 'v', 0, "verbosity bitmask")
	optConsole := getopt.BoolLong("console", 0, "interactive front panel")
	optHelp := getopt.BoolLong("help", '?', "help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}
	if getopt.NArgs() > 0 {
		usage("unexpected argument", getopt.Args()[0])
	}

	// Diagnostics go to stderr unless redirected to the log file.
	diag := os.Stderr
	if *optDfile {
		file, err := os.Create(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open log file %s: %v\n", logFile, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Diagnostics are being sent to file %s\n", logFile)
		diag = file
		defer file.Close()
	}
	debug.SetOutput(diag)
	slog.SetDefault(slog.New(logger.NewHandler(diag, nil)))

	if *optConfig != "" {
		applyConfigFile(*optConfig)
	}

	if *optVerbose >= 16 {
		usage("verbosity setting larger than 15", strconv.Itoa(*optVerbose))
	}
	debug.SetMask(*optVerbose)

	if *optJump >= 8192 || *optJump < 0 {
		usage("can only jump to addresses less than 8192", strconv.Itoa(*optJump))
	}
	if *optPen > 12 {
		usage("maximum pen size is 12", strconv.Itoa(*optPen))
	}

	monitor := parseAddrOpt("monitor", *optMonitor)
	traceFrom := parseAddrOpt("start", *optStart)

	cfg := core.Config{
		ReaderPath:  *optReader,
		PunchPath:   *optPunch,
		TTYInPath:   *optTTYIn,
		PlotPath:    *optPlot,
		StorePath:   *optStore,
		SavePath:    *optSave,
		StopPath:    stopFile,
		JumpAddr:    uint32(*optJump),
		Abandon:     *optAbandon,
		TraceAfter:  *optTrace,
		TraceFrom:   traceFrom,
		TraceWindow: *optRtrace,
		Monitor:     monitor,
		PlotWidth:   *optWidth,
		PlotHeight:  *optHeight,
		PenSize:     *optPen,
	}
	if cfg.TraceWindow >= 0 {
		cfg.TraceAfter = -1 // -rtrace overrides -trace and -start
		cfg.TraceFrom = -1
	}

	reportSettings(cfg)

	session := core.New(cfg)
	if err := session.Prime(); err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}

	if *optConsole {
		slog.Info("E900 front panel. Type help for commands.")
		consolereader.ConsoleReader(session)
		os.Exit(session.Finish(cpu.StopNone, nil))
	}
	os.Exit(session.Run())
}

func usage(message, detail string) {
	getopt.Usage()
	fmt.Fprintf(os.Stderr, "%s: %s\n", message, detail)
	os.Exit(1)
}

// Parse an address option in plain or m^n form, -1 when absent.
func parseAddrOpt(name, value string) int64 {
	if value == "" {
		return -1
	}
	addr, err := cpu.ParseAddr(value)
	if err != nil {
		usage("malformed address", value)
	}
	if addr >= store.Size {
		usage(name+" address outside store bounds", value)
	}
	return addr
}

// Overlay settings from a file onto options left at their defaults.
// The command line wins over the file.
func applyConfigFile(path string) {
	options, err := config.LoadConfigFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "*** %v\n", err)
		os.Exit(1)
	}
	for _, option := range options {
		opt := getopt.Lookup(option.Name)
		if opt == nil || option.Name == "config" {
			fmt.Fprintf(os.Stderr, "*** %s: unknown option %q\n", path, option.Name)
			os.Exit(1)
		}
		if opt.Seen() {
			continue
		}
		if err := opt.Value().Set(option.Value, opt); err != nil {
			fmt.Fprintf(os.Stderr, "*** %s: option %s: %v\n", path, option.Name, err)
			os.Exit(1)
		}
	}
}

// Report the resolved settings before execution starts.
func reportSettings(cfg core.Config) {
	if !debug.Enabled(debug.General) {
		return
	}
	debug.Printf("Paper tape will be read from %s\n", cfg.ReaderPath)
	debug.Printf("Paper tape will be punched to %s\n", cfg.PunchPath)
	debug.Printf("Teletype input will be read from %s\n", cfg.TTYInPath)
	debug.Printf("Plotter output will go to %s\n", cfg.PlotPath)
	debug.Printf("Plotter paper width %d, height %d\n", cfg.PlotWidth, cfg.PlotHeight)
	debug.Printf("Plotter pen size %d steps\n", cfg.PenSize)
	debug.Printf("Store image will be read from %s\n", cfg.StorePath)
	debug.Printf("Execution will commence at address %s (%d)\n",
		cpu.FormatAddr(cfg.JumpAddr), cfg.JumpAddr)
	if cfg.Abandon >= 0 {
		debug.Printf("Execution will be abandoned after %d instructions executed\n", cfg.Abandon)
	}
	if cfg.TraceAfter >= 0 {
		debug.Printf("Tracing will start after %d instructions executed\n", cfg.TraceAfter)
	}
	if cfg.TraceFrom >= 0 {
		debug.Printf("Tracing will start from location %d onwards\n", cfg.TraceFrom)
	}
	if cfg.TraceWindow >= 0 {
		debug.Printf("Limited tracing will start after %d instructions executed\n", cfg.TraceWindow)
	}
	if cfg.Monitor >= 0 {
		debug.Printf("Location %s (%d) will be monitored\n",
			cpu.FormatAddr(uint32(cfg.Monitor)), cfg.Monitor)
	}
}
