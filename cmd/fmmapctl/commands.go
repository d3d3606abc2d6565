package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/fmmap"
)

type cli struct {
	cfg Config
	out io.Writer
}

func parseInts(args []string, names ...string) ([]int64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%w: want %d argument(s): %v", errUsage, len(names), names)
	}
	out := make([]int64, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", names[i], a, err)
		}
		out[i] = v
	}
	return out, nil
}

func (c *cli) stat(path string) error {
	f, err := c.cfg.options().Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	md, err := f.Metadata()
	if err != nil {
		return err
	}
	printMetadata(c.out, f.Len(), md)
	return nil
}

func printMetadata(w io.Writer, mapped int, md fmmap.MetaData) {
	fmt.Fprintf(w, "path:     %s\n", md.Path())
	fmt.Fprintf(w, "backend:  %s\n", md.Backend())
	fmt.Fprintf(w, "mapped:   %d\n", mapped)
	fmt.Fprintf(w, "size:     %d\n", md.Len())
	if !md.IsFile() {
		return
	}
	fmt.Fprintf(w, "mode:     %s\n", md.Mode())
	fmt.Fprintf(w, "modified: %s\n", md.ModTime().Format("2006-01-02 15:04:05.000000000 -0700"))
	fmt.Fprintf(w, "accessed: %s\n", md.AccessTime().Format("2006-01-02 15:04:05.000000000 -0700"))
	fmt.Fprintf(w, "inode:    %d (dev %d, links %d)\n", md.Ino(), md.Dev(), md.Nlink())
}

func (c *cli) dump(path string, args []string) error {
	v, err := parseInts(args, "offset", "len")
	if err != nil {
		return err
	}

	f, err := c.cfg.options().Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := f.Bytes(int(v[0]), int(v[1]))
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.out, hex.Dump(b))
	return err
}

func (c *cli) truncate(ctx context.Context, path string, args []string) error {
	v, err := parseInts(args, "size")
	if err != nil {
		return err
	}

	f, err := c.cfg.options().OpenExistingMut(path)
	if err != nil {
		return err
	}
	defer f.Close()

	old := f.Len()
	if err := f.Truncate(ctx, v[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %d -> %d bytes\n", path, old, f.Len())
	return nil
}

func (c *cli) zero(path string, args []string) error {
	v, err := parseInts(args, "start", "end")
	if err != nil {
		return err
	}

	f, err := c.cfg.options().OpenMut(path)
	if err != nil {
		return err
	}
	defer f.Close()

	start, end := int(v[0]), int(v[1])
	if start < 0 || start > f.Len() {
		return fmt.Errorf("start %d outside [0, %d]", start, f.Len())
	}
	f.ZeroRange(start, end)
	if end = min(end, f.Len()); end <= start {
		return nil
	}
	return f.FlushRange(start, end-start)
}
