package fmmap

import (
	"errors"
	"fmt"
	"io"
)

// ErrorKind classifies an Error.
type ErrorKind uint8

const (
	// KindIO is an I/O failure without a more specific kind.
	KindIO ErrorKind = iota
	// KindUnexpectedEnd reports a read or write running past the end of the buffer.
	KindUnexpectedEnd
	// KindOutOfRange reports an offset or length outside the valid range.
	KindOutOfRange
	// KindOpenFailed reports a failure to open or stat the backing file.
	KindOpenFailed
	// KindMmapFailed reports a failure of the mapping call.
	KindMmapFailed
	// KindRemapFailed reports a failure to re-establish a mapping after a resize.
	KindRemapFailed
	// KindTruncationFailed reports a failure to change the file length.
	KindTruncationFailed
	// KindFlushFailed reports a failure to write mapped pages back to the file.
	KindFlushFailed
	// KindSyncDirFailed reports a failure to fsync the parent directory.
	KindSyncDirFailed
	// KindInvalidOperation reports a call that the current backend cannot serve.
	KindInvalidOperation
)

var kindNames = [...]string{
	KindIO:               "io error",
	KindUnexpectedEnd:    "unexpected end",
	KindOutOfRange:       "out of range",
	KindOpenFailed:       "open failed",
	KindMmapFailed:       "mmap failed",
	KindRemapFailed:      "remap failed",
	KindTruncationFailed: "truncation failed",
	KindFlushFailed:      "flush failed",
	KindSyncDirFailed:    "sync dir failed",
	KindInvalidOperation: "invalid operation",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is the structured error returned by every fallible operation.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type Error struct {
	Kind ErrorKind
	Path string
	Msg  string
	// cause is the collaborator error (syscall, file system) or a sentinel.
	cause error
}

func (e *Error) Error() string {
	s := "fmmap: " + e.Kind.String()
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.cause != nil && !isSentinel(e.cause) {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !isSentinel(t) {
		return false
	}
	return e.Kind == t.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

var (
	// ErrUnexpectedEnd matches every KindUnexpectedEnd error. It also satisfies
	// errors.Is(err, io.ErrUnexpectedEOF).
	ErrUnexpectedEnd = &Error{Kind: KindUnexpectedEnd, cause: io.ErrUnexpectedEOF}
	// ErrOutOfRange matches every KindOutOfRange error.
	ErrOutOfRange = &Error{Kind: KindOutOfRange}
	// ErrInvalidOperation matches every KindInvalidOperation error.
	ErrInvalidOperation = &Error{Kind: KindInvalidOperation}
	// ErrEmptyMmap is returned by data-bearing calls on an empty mapping.
	ErrEmptyMmap = &Error{Kind: KindInvalidOperation, Msg: "call on an empty mapping", cause: io.ErrUnexpectedEOF}
	// ErrStaleView is returned by readers and writers used after the mapping was
	// resized, frozen, removed or closed.
	ErrStaleView = &Error{Kind: KindInvalidOperation, Msg: "view outlived its mapping"}
	// ErrWouldBlock is returned by TryLock* when the lock is held elsewhere.
	ErrWouldBlock = errors.New("fmmap: lock is held by another handle")
)

var sentinels = []*Error{ErrUnexpectedEnd, ErrOutOfRange, ErrInvalidOperation, ErrEmptyMmap, ErrStaleView}

func isSentinel(err error) bool {
	for _, s := range sentinels {
		if err == s {
			return true
		}
	}
	return false
}

func newError(kind ErrorKind, path, msg string, cause error) *Error {
	return &Error{Kind: kind, Path: path, Msg: msg, cause: cause}
}

func eofError(offset, size, length int) error {
	return newError(KindUnexpectedEnd, "",
		fmt.Sprintf("range [%d, %d) exceeds length %d", offset, offset+size, length), ErrUnexpectedEnd)
}
