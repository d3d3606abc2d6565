package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/hupe1980/fmmap"
)

var replCommands = []string{
	"len", "read", "write", "get", "set", "zero", "truncate", "flush", "info", "help", "quit",
}

// session is one interactive edit of a writable mapping.
type session struct {
	ctx context.Context
	f   *fmmap.MmapFileMut
	out io.Writer
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fmmapctl_history")
}

func (c *cli) repl(ctx context.Context, path string, stdin io.Reader) error {
	o := c.cfg.options()

	var (
		f   *fmmap.MmapFileMut
		err error
	)
	if c.cfg.Cow {
		f, err = o.OpenCowMut(path)
	} else {
		f, err = o.OpenMut(path)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	s := &session{ctx: ctx, f: f, out: c.out}
	if stdin == os.Stdin {
		return s.interactive()
	}
	return s.script(stdin)
}

// script runs one command per line from r.
func (s *session) script(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s.exec(sc.Text()) {
			return nil
		}
	}
	return sc.Err()
}

func (s *session) interactive() error {
	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, c := range replCommands {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c)
			}
		}
		return out
	})

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if path := historyFile(); path != "" {
			if f, err := os.Create(path); err == nil {
				_, _ = ln.WriteHistory(f)
				f.Close()
			}
		}
	}()

	fmt.Fprintf(s.out, "fmmapctl - %s (%s, %d bytes)\n", s.f.Path(), s.f.Backend(), s.f.Len())
	fmt.Fprintln(s.out, "Type 'help' for available commands.")

	for {
		line, err := ln.Prompt("fmmap> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.exec(line) {
			return nil
		}
	}
}

// exec runs one command and reports whether the session should end.
func (s *session) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		s.help()
	case "len":
		fmt.Fprintln(s.out, s.f.Len())
	case "info":
		err = s.info()
	case "read":
		err = s.read(args)
	case "write":
		err = s.write(args)
	case "get":
		err = s.get(args)
	case "set":
		err = s.set(args)
	case "zero":
		err = s.zero(args)
	case "truncate":
		err = s.truncate(args)
	case "flush":
		err = s.f.Flush()
	default:
		err = fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
	}
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return false
}

func (s *session) help() {
	fmt.Fprint(s.out, `Commands:
  len                               Mapped length
  info                              Metadata
  read <off> <n>                    Hex dump n bytes at off
  write <off> <text>                Write text at off
  get <type> <off> [be|le]          Read a number (u8 i8 u16 i16 u32 i32 u64 i64 f32 f64)
  set <type> <off> <value> [be|le]  Write a number
  zero <start> <end>                Zero a range
  truncate <size>                   Resize
  flush                             Write dirty pages back
  quit                              Exit
`)
}

func (s *session) info() error {
	md, err := s.f.Metadata()
	if err != nil {
		return err
	}
	printMetadata(s.out, s.f.Len(), md)
	fmt.Fprintf(s.out, "cow:      %v\n", s.f.IsCow())
	fmt.Fprintf(s.out, "dirty:    %d page(s)\n", s.f.DirtyPages())
	return nil
}

func (s *session) read(args []string) error {
	v, err := parseInts(args, "off", "n")
	if err != nil {
		return err
	}
	b, err := s.f.Bytes(int(v[0]), int(v[1]))
	if err != nil {
		return err
	}
	_, err = io.WriteString(s.out, hex.Dump(b))
	return err
}

func (s *session) write(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: write <off> <text>", errUsage)
	}
	v, err := parseInts(args[:1], "off")
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	if err := s.f.WriteAll([]byte(text), int(v[0])); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "wrote %d bytes\n", len(text))
	return nil
}

func (s *session) zero(args []string) error {
	v, err := parseInts(args, "start", "end")
	if err != nil {
		return err
	}
	start := int(v[0])
	if start < 0 || start > s.f.Len() {
		return fmt.Errorf("start %d outside [0, %d]", start, s.f.Len())
	}
	s.f.ZeroRange(start, int(v[1]))
	return nil
}

func (s *session) truncate(args []string) error {
	v, err := parseInts(args, "size")
	if err != nil {
		return err
	}
	return s.f.Truncate(s.ctx, v[0])
}

func byteOrder(args []string) (binary.ByteOrder, error) {
	if len(args) == 0 {
		return binary.BigEndian, nil
	}
	switch strings.ToLower(args[0]) {
	case "be":
		return binary.BigEndian, nil
	case "le":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("byte order must be be or le, got %q", args[0])
	}
}

func (s *session) get(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: get <type> <off> [be|le]", errUsage)
	}
	off, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid off %q: %w", args[1], err)
	}
	order, err := byteOrder(args[2:])
	if err != nil {
		return err
	}

	var v any
	switch args[0] {
	case "u8":
		v, err = s.f.ReadUint8(off)
	case "i8":
		v, err = s.f.ReadInt8(off)
	case "u16":
		v, err = s.f.ReadUint16(off, order)
	case "i16":
		v, err = s.f.ReadInt16(off, order)
	case "u32":
		v, err = s.f.ReadUint32(off, order)
	case "i32":
		v, err = s.f.ReadInt32(off, order)
	case "u64":
		v, err = s.f.ReadUint64(off, order)
	case "i64":
		v, err = s.f.ReadInt64(off, order)
	case "f32":
		v, err = s.f.ReadFloat32(off, order)
	case "f64":
		v, err = s.f.ReadFloat64(off, order)
	default:
		return fmt.Errorf("unknown type %q", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, v)
	return nil
}

func (s *session) set(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: set <type> <off> <value> [be|le]", errUsage)
	}
	off, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid off %q: %w", args[1], err)
	}
	order, err := byteOrder(args[3:])
	if err != nil {
		return err
	}
	val := args[2]

	switch typ := args[0]; typ {
	case "f32", "f64":
		bits := 64
		if typ == "f32" {
			bits = 32
		}
		x, perr := strconv.ParseFloat(val, bits)
		if perr != nil {
			return perr
		}
		if typ == "f32" {
			return s.f.WriteFloat32(float32(x), off, order)
		}
		return s.f.WriteFloat64(x, off, order)
	case "u8", "u16", "u32", "u64":
		bits, _ := strconv.Atoi(typ[1:])
		x, perr := strconv.ParseUint(val, 0, bits)
		if perr != nil {
			return perr
		}
		switch bits {
		case 8:
			return s.f.WriteUint8(uint8(x), off)
		case 16:
			return s.f.WriteUint16(uint16(x), off, order)
		case 32:
			return s.f.WriteUint32(uint32(x), off, order)
		default:
			return s.f.WriteUint64(x, off, order)
		}
	case "i8", "i16", "i32", "i64":
		bits, _ := strconv.Atoi(typ[1:])
		x, perr := strconv.ParseInt(val, 0, bits)
		if perr != nil {
			return perr
		}
		switch bits {
		case 8:
			return s.f.WriteInt8(int8(x), off)
		case 16:
			return s.f.WriteInt16(int16(x), off, order)
		case 32:
			return s.f.WriteInt32(int32(x), off, order)
		default:
			return s.f.WriteInt64(x, off, order)
		}
	default:
		return fmt.Errorf("unknown type %q", typ)
	}
}
