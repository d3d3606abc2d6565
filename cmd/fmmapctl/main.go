// fmmapctl inspects and edits memory-mapped files.
//
// Usage:
//
//	fmmapctl [flags] <command> <file> [args]
//
// Commands:
//
//	stat <file>                  Show backend and file metadata
//	dump <file> <offset> <len>   Hex dump a range
//	truncate <file> <size>       Resize the file
//	zero <file> <start> <end>    Zero a range and flush it
//	repl <file>                  Interactive session
//
// Flags:
//
//	-c, --config      JSONC config file
//	    --offset      Map from this file offset
//	    --len         Map at most this many bytes
//	    --max-size    Pre-size new files
//	    --cow         Open copy-on-write (repl only)
//	    --populate    Prefault the mapping
//	    --log-level   debug, info, warn or error
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	flag "github.com/spf13/pflag"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newFlagSet(stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("fmmapctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringP("config", "c", "", "JSONC config file")
	fs.Int64("offset", 0, "Map from this file offset")
	fs.Int("len", 0, "Map at most this many bytes (0 = to end of file)")
	fs.Int64("max-size", 0, "Pre-size new files to this many bytes")
	fs.Bool("cow", false, "Open copy-on-write (repl only)")
	fs.Bool("populate", false, "Prefault the mapping")
	fs.String("log-level", "warn", "Log level: debug|info|warn|error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: fmmapctl [flags] <stat|dump|truncate|zero|repl> <file> [args]")
		fs.PrintDefaults()
	}
	return fs
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet(stderr)
	fs.SetInterspersed(false)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	cfg := DefaultConfig()
	if path, _ := fs.GetString("config"); path != "" {
		var err error
		if cfg, err = loadConfigFile(path, cfg); err != nil {
			return err
		}
	}
	cfg = applyFlags(fs, cfg)
	if err := cfg.validate(); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return errUsage
	}
	cmd, path, cmdArgs := strings.ToLower(rest[0]), rest[1], rest[2:]

	c := &cli{cfg: cfg, out: stdout}
	switch cmd {
	case "stat":
		return c.stat(path)
	case "dump":
		return c.dump(path, cmdArgs)
	case "truncate":
		return c.truncate(ctx, path, cmdArgs)
	case "zero":
		return c.zero(path, cmdArgs)
	case "repl":
		return c.repl(ctx, path, stdin)
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
