package mmap

import "errors"

// Mode is the protection and sharing mode of a mapping.
type Mode int

const (
	// ModeReadOnly maps the file shared and read-only.
	ModeReadOnly Mode = iota
	// ModeReadWrite maps the file shared and writable; writes reach the file.
	ModeReadWrite
	// ModeCopyOnWrite maps the file private and writable; writes stay in this process.
	ModeCopyOnWrite
	// ModeExec maps the file shared, readable and executable.
	ModeExec
)

func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "read-only"
	case ModeReadWrite:
		return "read-write"
	case ModeCopyOnWrite:
		return "copy-on-write"
	case ModeExec:
		return "exec"
	default:
		return "unknown"
	}
}

// Writable reports whether the mode allows writes through the mapping.
func (m Mode) Writable() bool {
	return m == ModeReadWrite || m == ModeCopyOnWrite
}

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

// Config parameterizes a mapping.
type Config struct {
	// Offset is the file offset the mapping starts at. It need not be page aligned.
	Offset int64
	// Len is the mapping length. Zero maps from Offset to the end of the file.
	Len  int
	Mode Mode
	// Populate prefaults the mapping (MAP_POPULATE where supported).
	Populate bool
	// Stack requests a mapping suitable for a thread stack (MAP_STACK where supported).
	Stack bool
}

var (
	// ErrClosed is returned when attempting to use an unmapped region.
	ErrClosed = errors.New("mmap: region is unmapped")
	// ErrInvalidSize is returned when the requested length is negative or does not fit in memory.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned when a range lies outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned when the offset is negative or past the end of the file.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
	// ErrReadOnly is returned when a write-only operation is requested on a read-only mapping.
	ErrReadOnly = errors.New("mmap: mapping is not writable")

	errRemapUnsupported = errors.New("mmap: in-place remap not supported on this platform")
)
