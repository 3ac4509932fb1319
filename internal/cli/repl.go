package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/fibdrv/internal/device"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// Timeout bounds each read or measurement. Computations are not
	// interrupted; the timeout only ends the trace span.
	Timeout time.Duration
}

// REPL drives a device interactively, one command per line.
type REPL struct {
	config  REPLConfig
	dev     *device.Device
	session *device.Session
	in      io.Reader
	out     io.Writer
}

// NewREPL creates a REPL on dev. No session is open until the user types
// open.
func NewREPL(dev *device.Device, config REPLConfig) *REPL {
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &REPL{config: config, dev: dev, in: os.Stdin, out: os.Stdout}
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Start reads commands until exit, EOF or ctx is done. A session left open
// is closed on return.
func (r *REPL) Start(ctx context.Context) {
	defer r.closeSession()

	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for ctx.Err() == nil {
		fmt.Fprint(r.out, ColorGreen()+"fibdrv> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(ctx, line) {
				return
			}
		}
		if err != nil {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%sfibdrv interactive session on %s%s\n", ColorBold(), r.dev.Name(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %sopen%s                   - Open a session on the device\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sclose%s                  - Close the current session\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sseek <n> [set|cur|end]%s - Move the cursor\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sread%s                   - Read the sequence at the cursor\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %s<n>%s                    - Seek to n and read\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %smeasure [mode]%s         - Time the engine of a mode (0-%d)\n", ColorYellow(), ColorReset(), r.dev.Modes()-1)
	fmt.Fprintf(r.out, "  %sstatus%s                 - Display the session state\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s                   - Display this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s            - Leave the session\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

// processCommand executes one command line. It returns false on exit.
func (r *REPL) processCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "open", "o":
		r.cmdOpen()
	case "close":
		r.cmdClose()
	case "seek", "s":
		r.cmdSeek(args)
	case "read", "r":
		r.cmdRead(ctx)
	case "measure", "m":
		r.cmdMeasure(ctx, args)
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		if n, err := strconv.ParseInt(cmd, 10, 64); err == nil {
			if r.seek(n, io.SeekStart) {
				r.cmdRead(ctx)
			}
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}
	return true
}

func (r *REPL) cmdOpen() {
	if r.session != nil {
		fmt.Fprintf(r.out, "Session %s is already open.\n", r.session.ID())
		return
	}
	s, err := r.dev.Open()
	if err != nil {
		fmt.Fprintf(r.out, "%sOpen failed: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	r.session = s
	fmt.Fprintf(r.out, "Opened session %s%s%s.\n", ColorCyan(), s.ID(), ColorReset())
}

func (r *REPL) cmdClose() {
	if r.session == nil {
		fmt.Fprintln(r.out, "No open session.")
		return
	}
	r.closeSession()
	fmt.Fprintln(r.out, "Session closed.")
}

func (r *REPL) closeSession() {
	if r.session != nil {
		r.session.Close()
		r.session = nil
	}
}

// requireSession prints a hint and returns false when no session is open.
func (r *REPL) requireSession() bool {
	if r.session == nil {
		fmt.Fprintf(r.out, "%sNo open session. Type %sopen%s%s first.%s\n", ColorRed(), ColorYellow(), ColorReset(), ColorRed(), ColorReset())
		return false
	}
	return true
}

func (r *REPL) cmdSeek(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: seek <n> [set|cur|end]%s\n", ColorRed(), ColorReset())
		return
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid offset: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	whence := io.SeekStart
	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "set":
		case "cur":
			whence = io.SeekCurrent
		case "end":
			whence = io.SeekEnd
		default:
			fmt.Fprintf(r.out, "%sUnknown origin: %s%s\n", ColorRed(), args[1], ColorReset())
			return
		}
	}
	r.seek(n, whence)
}

func (r *REPL) seek(n int64, whence int) bool {
	if !r.requireSession() {
		return false
	}
	pos, err := r.session.Seek(n, whence)
	if err != nil {
		fmt.Fprintf(r.out, "%sSeek failed: %v%s\n", ColorRed(), err, ColorReset())
		return false
	}
	fmt.Fprintf(r.out, "Cursor at %s%d%s.\n", ColorBlue(), pos, ColorReset())
	return true
}

func (r *REPL) cmdRead(ctx context.Context) {
	if !r.requireSession() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	start := time.Now()
	seq, err := r.session.ReadString(ctx)
	res := ReadResult{Offset: r.session.Offset(), Sequence: seq, Duration: time.Since(start), Err: err}
	PrintSequence(r.out, r.dev.Name(), res)
	if err == nil {
		DisplayResult(r.out, res)
	}
}

func (r *REPL) cmdMeasure(ctx context.Context, args []string) {
	if !r.requireSession() {
		return
	}
	mode := 0
	if len(args) > 0 {
		m, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(r.out, "%sInvalid mode: %s%s\n", ColorRed(), args[0], ColorReset())
			return
		}
		mode = m
	}
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	elapsed, err := r.session.Measure(ctx, mode)
	if err != nil {
		fmt.Fprintf(r.out, "%sMeasure failed: %v%s\n", ColorRed(), err, ColorReset())
		return
	}
	fmt.Fprintf(r.out, "Mode %d at offset %d: %s%s%s (%d ns)\n",
		mode, r.session.Offset(), ColorGreen(), FormatExecutionDuration(elapsed), ColorReset(), elapsed.Nanoseconds())
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent state:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Device:        %s%s%s\n", ColorCyan(), r.dev.Name(), ColorReset())
	fmt.Fprintf(r.out, "  Max offset:    %s%d%s\n", ColorCyan(), r.dev.MaxOffset(), ColorReset())
	fmt.Fprintf(r.out, "  Response size: %s%d%s bytes\n", ColorCyan(), r.dev.ResponseSize(), ColorReset())
	fmt.Fprintf(r.out, "  Modes:         %s%d%s\n", ColorCyan(), r.dev.Modes(), ColorReset())
	if r.session == nil {
		fmt.Fprintf(r.out, "  Session:       %snone%s\n", ColorCyan(), ColorReset())
	} else {
		fmt.Fprintf(r.out, "  Session:       %s%s%s\n", ColorCyan(), r.session.ID(), ColorReset())
		fmt.Fprintf(r.out, "  Cursor:        %s%d%s\n", ColorCyan(), r.session.Offset(), ColorReset())
	}
	fmt.Fprintf(r.out, "  Timeout:       %s%s%s\n", ColorCyan(), r.config.Timeout, ColorReset())
	fmt.Fprintln(r.out)
}
