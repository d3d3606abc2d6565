package fmmap

import (
	"os"

	"github.com/hupe1980/fmmap/internal/fs"
	"github.com/hupe1980/fmmap/resource"
)

// Options configures how a mapping is opened or created.
//
// Options is an immutable builder: every setter returns a modified copy, so a
// shared base can be specialized freely.
//
//	f, err := fmmap.DefaultOptions().
//	    MaxSize(8 << 10).
//	    Populate().
//	    CreateMut("data.bin")
//
// Access mode is implied by the constructor: Open and OpenExec map read-only,
// the *Mut constructors read-write.
type Options struct {
	offset       int64
	length       int
	populate     bool
	stack        bool
	maxSize      int64
	removeOnDrop bool

	append    bool
	create    bool
	createNew bool
	truncate  bool

	mode        os.FileMode
	customFlags int

	win windowsOptions

	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
	fsys    fs.FileSystem
}

// windowsOptions are passed to CreateFile. They are ignored on other platforms.
type windowsOptions struct {
	accessMode       uint32
	shareMode        uint32
	attributes       uint32
	securityQoSFlags uint32
	customFlags      uint32
}

func (w windowsOptions) isZero() bool { return w == windowsOptions{} }

// DefaultOptions returns the options used by the package-level constructors.
func DefaultOptions() Options {
	return Options{mode: 0o666}
}

// Offset sets the file offset the mapping starts at. It need not be page aligned.
func (o Options) Offset(off int64) Options {
	o.offset = off
	return o
}

// Len fixes the mapping length. Zero maps to the end of the file.
func (o Options) Len(n int) Options {
	o.length = n
	return o
}

// Populate prefaults the mapping where the platform supports it.
func (o Options) Populate() Options {
	o.populate = true
	return o
}

// Stack requests a mapping suitable for a thread stack where the platform supports it.
func (o Options) Stack() Options {
	o.stack = true
	return o
}

// MaxSize sets the length a new or empty file is grown to before mapping.
func (o Options) MaxSize(n int64) Options {
	o.maxSize = n
	return o
}

// RemoveOnDrop makes Close delete the backing file.
func (o Options) RemoveOnDrop(v bool) Options {
	o.removeOnDrop = v
	return o
}

// Append opens the file with O_APPEND.
func (o Options) Append(v bool) Options {
	o.append = v
	return o
}

// Create opens the file with O_CREATE.
func (o Options) Create(v bool) Options {
	o.create = v
	return o
}

// CreateNew opens the file with O_CREATE|O_EXCL.
func (o Options) CreateNew(v bool) Options {
	o.createNew = v
	return o
}

// Truncate opens the file with O_TRUNC.
func (o Options) Truncate(v bool) Options {
	o.truncate = v
	return o
}

// Mode sets the permission bits for newly created files. Unix only.
func (o Options) Mode(m os.FileMode) Options {
	o.mode = m
	return o
}

// CustomFlags adds raw open(2) flags. Unix only.
func (o Options) CustomFlags(flags int) Options {
	o.customFlags = flags
	return o
}

// AccessMode overrides the desired access passed to CreateFile. Windows only.
func (o Options) AccessMode(v uint32) Options {
	o.win.accessMode = v
	return o
}

// ShareMode sets the share mode passed to CreateFile. Windows only.
func (o Options) ShareMode(v uint32) Options {
	o.win.shareMode = v
	return o
}

// Attributes sets the file attributes passed to CreateFile. Windows only.
func (o Options) Attributes(v uint32) Options {
	o.win.attributes = v
	return o
}

// SecurityQoSFlags sets the security quality of service flags. Windows only.
func (o Options) SecurityQoSFlags(v uint32) Options {
	o.win.securityQoSFlags = v
	return o
}

// WindowsCustomFlags adds raw CreateFile flags. Windows only.
func (o Options) WindowsCustomFlags(v uint32) Options {
	o.win.customFlags = v
	return o
}

// Logger sets the logger for lifecycle events.
func (o Options) Logger(l *Logger) Options {
	o.logger = l
	return o
}

// Metrics sets the metrics collector.
func (o Options) Metrics(mc MetricsCollector) Options {
	o.metrics = mc
	return o
}

// Controller bounds concurrent blocking operations, memory growth and copy-out
// bandwidth. A nil controller imposes no limits.
func (o Options) Controller(rc *resource.Controller) Options {
	o.rc = rc
	return o
}

func (o Options) withFS(fsys fs.FileSystem) Options {
	o.fsys = fsys
	return o
}

// openFlags merges the user flags onto base.
func (o Options) openFlags(base int) int {
	flag := base
	if o.append {
		flag |= os.O_APPEND
	}
	if o.truncate {
		flag |= os.O_TRUNC
	}
	if o.create {
		flag |= os.O_CREATE
	}
	if o.createNew {
		flag |= os.O_CREATE | os.O_EXCL
	}
	return flag | o.customFlags
}

// env carries the ambient collaborators of one facade.
type env struct {
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
	fsys    fs.FileSystem
}

func (o Options) env() env {
	e := env{logger: o.logger, metrics: o.metrics, rc: o.rc, fsys: o.fsys}
	if e.logger == nil {
		e.logger = NoopLogger()
	}
	if e.metrics == nil {
		e.metrics = NoopMetricsCollector{}
	}
	if e.fsys == nil {
		e.fsys = fs.Default
	}
	return e
}

func (e env) options() Options {
	o := DefaultOptions()
	o.logger, o.metrics, o.rc, o.fsys = e.logger, e.metrics, e.rc, e.fsys
	return o
}
