package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	FailOnOpen     bool
	FailAfterBytes int64 // Fail writes after this many bytes written TO THIS FILE. -1 to disable.
	FailOnTruncate bool
	FailOnSync     bool
	FailOnClose    bool
	FailOnRemove   bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS is a FileSystem wrapper that can inject errors.
type FaultyFS struct {
	FS    FileSystem
	mu    sync.Mutex
	rules map[string]Fault // Filename pattern -> Fault
	// Default applies to names no rule matches.
	Default Fault

	truncates int
	syncs     int
}

// NewFaultyFS creates a new FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{
		FS:      fs,
		rules:   make(map[string]Fault),
		Default: Fault{FailAfterBytes: -1},
	}
}

// AddRule adds a fault injection rule for names containing pattern.
// When several rules match, the longest pattern wins.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// ClearRules removes all rules.
func (f *FaultyFS) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.rules)
}

// Truncates returns how many Truncate calls reached the underlying files.
func (f *FaultyFS) Truncates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.truncates
}

// Syncs returns how many Sync calls reached the underlying files.
func (f *FaultyFS) Syncs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

func (f *FaultyFS) match(name string) Fault {
	f.mu.Lock()
	defer f.mu.Unlock()

	fault, best := f.Default, -1
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) && len(pattern) > best {
			fault, best = rule, len(pattern)
		}
	}
	return fault
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	fault := f.match(name)
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.err()}
	}

	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f}, nil
}

func (f *FaultyFS) Remove(name string) error {
	if fault := f.match(name); fault.FailOnRemove {
		return &os.PathError{Op: "remove", Path: name, Err: fault.err()}
	}
	return f.FS.Remove(name)
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) {
	return f.FS.Stat(name)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) {
	return f.FS.ReadDir(name)
}

// faultyFile consults the rules on every call so faults can be armed after open.
type faultyFile struct {
	File
	fs      *FaultyFS
	written int64
}

func (ff *faultyFile) Write(p []byte) (n int, err error) {
	if fault := ff.fs.match(ff.Name()); fault.FailAfterBytes >= 0 && ff.written+int64(len(p)) > fault.FailAfterBytes {
		return 0, fault.err()
	}
	n, err = ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Truncate(size int64) error {
	if fault := ff.fs.match(ff.Name()); fault.FailOnTruncate {
		return &os.PathError{Op: "truncate", Path: ff.Name(), Err: fault.err()}
	}
	ff.fs.mu.Lock()
	ff.fs.truncates++
	ff.fs.mu.Unlock()
	return ff.File.Truncate(size)
}

func (ff *faultyFile) Sync() error {
	if fault := ff.fs.match(ff.Name()); fault.FailOnSync {
		return &os.PathError{Op: "sync", Path: ff.Name(), Err: fault.err()}
	}
	ff.fs.mu.Lock()
	ff.fs.syncs++
	ff.fs.mu.Unlock()
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if fault := ff.fs.match(ff.Name()); fault.FailOnClose {
		_ = ff.File.Close()
		return &os.PathError{Op: "close", Path: ff.Name(), Err: fault.err()}
	}
	return ff.File.Close()
}
