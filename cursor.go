package fmmap

import (
	"errors"
	"io"
)

var errNegativePosition = errors.New("fmmap: negative position")

// cursor is a positioned window of n bytes at off inside a slot's mapping.
// It remembers the slot generation it was created in and refuses to touch
// the mapping once that generation has passed.
type cursor struct {
	s   *slot
	gen uint64
	off int
	n   int
	pos int64
}

// newCursor must be called with s locked.
func newCursor(s *slot, off, n int) cursor {
	return cursor{s: s, gen: s.gen, off: off, n: n}
}

// window returns the bytes of the cursor. The caller holds s.mu.
func (c *cursor) window() ([]byte, error) {
	if c.s.gen != c.gen {
		return nil, ErrStaleView
	}
	buf := c.s.be.bytes()
	return buf[c.off : c.off+c.n : c.off+c.n], nil
}

// Len returns the size of the window.
func (c *cursor) Len() int { return c.n }

// Offset returns where the window starts in the mapping.
func (c *cursor) Offset() int { return c.off }

// Position returns the cursor position relative to the window start.
func (c *cursor) Position() int64 { return c.pos }

// Remaining returns the bytes between the position and the window end.
func (c *cursor) Remaining() int {
	if c.pos >= int64(c.n) {
		return 0
	}
	return c.n - int(c.pos)
}

// Seek implements io.Seeker. Positions past the end are allowed; reads there
// return io.EOF.
func (c *cursor) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = c.pos + offset
	case io.SeekEnd:
		abs = int64(c.n) + offset
	default:
		return 0, newError(KindInvalidOperation, "", "invalid whence", ErrInvalidOperation)
	}
	if abs < 0 {
		return 0, errNegativePosition
	}
	c.pos = abs
	return abs, nil
}

// Reader reads sequentially from a range of a mapping. It implements
// io.Reader, io.ReaderAt, io.ByteReader, io.Seeker and io.WriterTo.
//
// A Reader is not safe for concurrent use. It fails with ErrStaleView once
// the mapping it came from is resized, frozen, removed or closed.
type Reader struct {
	cursor
}

var (
	_ io.Reader     = (*Reader)(nil)
	_ io.ReaderAt   = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
	_ io.Seeker     = (*Reader)(nil)
	_ io.WriterTo   = (*Reader)(nil)
)

func (r *Reader) Read(p []byte) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	buf, err := r.window()
	if err != nil {
		return 0, err
	}
	if r.pos >= int64(len(buf)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, buf[r.pos:])
	r.pos += int64(n)
	return n, nil
}

// ReadAt reads from off relative to the window start. The position is not
// changed.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativePosition
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	buf, err := r.window()
	if err != nil {
		return 0, err
	}
	if off >= int64(len(buf)) {
		return 0, io.EOF
	}
	n := copy(p, buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *Reader) ReadByte() (byte, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	buf, err := r.window()
	if err != nil {
		return 0, err
	}
	if r.pos >= int64(len(buf)) {
		return 0, io.EOF
	}
	b := buf[r.pos]
	r.pos++
	return b, nil
}

// WriteTo writes the remaining bytes to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	buf, err := r.window()
	if err != nil {
		return 0, err
	}
	if r.pos >= int64(len(buf)) {
		return 0, nil
	}
	n, err := w.Write(buf[r.pos:])
	r.pos += int64(n)
	return int64(n), err
}

// Writer writes sequentially into a range of a mapping. It implements
// io.Writer, io.WriterAt, io.ByteWriter, io.StringWriter and io.Seeker.
//
// Writes never extend the window; a write that does not fit copies what fits
// and returns an error matching ErrUnexpectedEnd. Like Reader, a Writer is
// not safe for concurrent use and fails with ErrStaleView once its mapping
// changes.
//
// Writing does not make data durable. Bytes written through a Writer are in
// the mapping only; call Flush, FlushRange or FlushDirty on the owning
// MmapFileMut to write them back to the file.
type Writer struct {
	cursor
}

var (
	_ io.Writer       = (*Writer)(nil)
	_ io.WriterAt     = (*Writer)(nil)
	_ io.ByteWriter   = (*Writer)(nil)
	_ io.StringWriter = (*Writer)(nil)
	_ io.Seeker       = (*Writer)(nil)
)

func (w *Writer) Write(p []byte) (int, error) {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	n, err := w.writeAtLocked(p, w.pos)
	w.pos += int64(n)
	return n, err
}

// WriteAt writes at off relative to the window start. The position is not
// changed.
func (w *Writer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativePosition
	}
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	return w.writeAtLocked(p, off)
}

func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *Writer) WriteByte(b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func (w *Writer) writeAtLocked(p []byte, off int64) (int, error) {
	buf, err := w.window()
	if err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= int64(len(buf)) {
		return 0, eofError(int(off), len(p), len(buf))
	}
	n := copy(buf[off:], p)
	w.s.dirty.mark(w.off+int(off), n)
	if n < len(p) {
		return n, eofError(int(off), len(p), len(buf))
	}
	return n, nil
}
