// SPDX-License-Identifier: Apache-2.0

// Package script runs line-oriented allocator scripts:
//
//	# comment
//	reserve NAME BYTES   reserve a block; BYTES accepts units such as 2KiB
//	release NAME         release a named block
//	dump                 list all blocks in address order
//	bins                 list the free blocks of every non-empty bin
//	stats                print usage figures
//	check                verify the arena invariants
//	reset                reinitialize the arena and forget all names
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/wundergraph/go-halffit"
)

var (
	// ErrSyntax reports a malformed command line.
	ErrSyntax = errors.New("syntax error")
	// ErrName reports a name that is unknown to release or already taken by
	// reserve.
	ErrName = errors.New("bad name")
)

// Command is one parsed script line.
type Command struct {
	Line int
	Op   string
	Args []string
}

var arity = map[string]int{
	"reserve": 2,
	"release": 1,
	"dump":    0,
	"bins":    0,
	"stats":   0,
	"check":   0,
	"reset":   0,
	"help":    0,
}

// ParseLine parses a single line. It returns ok=false for blank lines and
// comments.
func ParseLine(n int, line string) (cmd Command, ok bool, err error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false, nil
	}
	op := strings.ToLower(fields[0])
	want, known := arity[op]
	if !known {
		return Command{}, false, fmt.Errorf("line %d: %w: unknown command %q", n, ErrSyntax, fields[0])
	}
	if len(fields)-1 != want {
		return Command{}, false, fmt.Errorf("line %d: %w: %s takes %d argument(s), got %d", n, ErrSyntax, op, want, len(fields)-1)
	}
	return Command{Line: n, Op: op, Args: fields[1:]}, true, nil
}

// Parse reads a whole script.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		cmd, ok, err := ParseLine(n, sc.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return cmds, nil
}

// Interpreter executes commands against one arena and keeps the names given
// to reserved blocks.
type Interpreter struct {
	arena *halffit.Concurrent
	out   io.Writer
	names map[string]halffit.Addr
}

// NewInterpreter returns an interpreter writing its output to out.
func NewInterpreter(arena *halffit.Concurrent, out io.Writer) *Interpreter {
	return &Interpreter{
		arena: arena,
		out:   out,
		names: make(map[string]halffit.Addr),
	}
}

// Run parses and executes the script in r, stopping at the first error.
func (in *Interpreter) Run(r io.Reader) error {
	cmds, err := Parse(r)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := in.Exec(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Exec executes a single command. A reserve that cannot be served is reported
// in the output and is not an error.
func (in *Interpreter) Exec(cmd Command) error {
	var err error
	switch cmd.Op {
	case "reserve":
		err = in.reserve(cmd.Args[0], cmd.Args[1])
	case "release":
		err = in.release(cmd.Args[0])
	case "dump":
		in.arena.Do(func(h *halffit.HalfFit) { in.dump(h) })
	case "bins":
		in.arena.Do(func(h *halffit.HalfFit) { in.bins(h) })
	case "stats":
		in.stats(in.arena.Stats())
	case "check":
		if err = in.arena.Check(); err == nil {
			fmt.Fprintln(in.out, "ok")
		}
	case "reset":
		in.arena.Reset()
		clear(in.names)
		fmt.Fprintln(in.out, "arena reset")
	case "help":
		fmt.Fprintln(in.out, "commands: reserve NAME BYTES, release NAME, dump, bins, stats, check, reset")
	default:
		err = fmt.Errorf("%w: unknown command %q", ErrSyntax, cmd.Op)
	}
	if err != nil {
		return fmt.Errorf("line %d: %s: %w", cmd.Line, cmd.Op, err)
	}
	return nil
}

func (in *Interpreter) reserve(name, size string) error {
	if _, taken := in.names[name]; taken {
		return fmt.Errorf("%w: %q is already reserved", ErrName, name)
	}
	n, err := humanize.ParseBytes(size)
	if err != nil {
		return fmt.Errorf("%w: size %q: %v", ErrSyntax, size, err)
	}
	a, err := in.arena.TryReserve(uintptr(n))
	switch {
	case errors.Is(err, halffit.ErrTooLarge):
		fmt.Fprintf(in.out, "%s: none (%s exceeds the largest size class)\n", name, humanize.IBytes(n))
		return nil
	case errors.Is(err, halffit.ErrNoFit):
		fmt.Fprintf(in.out, "%s: none (no free block holds %s)\n", name, humanize.IBytes(n))
		return nil
	case err != nil:
		return err
	}
	in.names[name] = a
	var units int
	in.arena.Do(func(h *halffit.HalfFit) { units = h.Block(a).Units })
	fmt.Fprintf(in.out, "%s = %d (%d %s, %s)\n", name, a, units, plural(units, "unit"), humanize.IBytes(uint64(units*halffit.UnitSize)))
	return nil
}

func (in *Interpreter) release(name string) error {
	a, ok := in.names[name]
	if !ok {
		return fmt.Errorf("%w: %q is not reserved", ErrName, name)
	}
	in.arena.Release(a)
	delete(in.names, name)
	fmt.Fprintf(in.out, "%s released\n", name)
	return nil
}

func (in *Interpreter) nameOf(a halffit.Addr) string {
	for name, addr := range in.names {
		if addr == a {
			return name
		}
	}
	return ""
}

func (in *Interpreter) dump(h *halffit.HalfFit) {
	for b := range h.Blocks() {
		state := "free"
		if b.Allocated {
			state = "used"
		}
		fmt.Fprintf(in.out, "%4d  %4d %-5s %9s  %s  bin %-2d", b.Addr, b.Units, plural(b.Units, "unit"), humanize.IBytes(uint64(b.Size())), state, b.Bin())
		if name := in.nameOf(b.Addr); name != "" {
			fmt.Fprintf(in.out, "  %s", name)
		}
		fmt.Fprintln(in.out)
	}
}

func (in *Interpreter) bins(h *halffit.HalfFit) {
	for i := range halffit.BinCount {
		var addrs []string
		for b := range h.BinBlocks(i) {
			addrs = append(addrs, fmt.Sprintf("%d(%d)", b.Addr, b.Units))
		}
		if len(addrs) > 0 {
			fmt.Fprintf(in.out, "bin %2d: %s\n", i, strings.Join(addrs, " "))
		}
	}
}

func (in *Interpreter) stats(s halffit.Stats) {
	fmt.Fprintf(in.out, "reserved  %s (peak %s)\n", humanize.IBytes(uint64(s.ReservedBytes)), humanize.IBytes(uint64(s.PeakBytes)))
	fmt.Fprintf(in.out, "free      %s (largest block %s)\n", humanize.IBytes(uint64(s.FreeBytes)), humanize.IBytes(uint64(s.LargestFree)))
	fmt.Fprintf(in.out, "reserves  %s (%s too large, %s no fit)\n", humanize.Comma(int64(s.Reserves)), humanize.Comma(int64(s.TooLarge)), humanize.Comma(int64(s.NoFit)))
	fmt.Fprintf(in.out, "releases  %s\n", humanize.Comma(int64(s.Releases)))
	fmt.Fprintf(in.out, "splits    %s, coalesces %s\n", humanize.Comma(int64(s.Splits)), humanize.Comma(int64(s.Coalesces)))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
