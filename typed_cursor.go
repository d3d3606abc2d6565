package fmmap

import "encoding/binary"

// readNext decodes a T at the reader position and advances past it.
// A value that does not fit leaves the position unchanged.
func readNext[T number](r *Reader, order binary.ByteOrder) (T, error) {
	var zero T
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	buf, err := r.window()
	if err != nil {
		return zero, err
	}
	if r.pos > int64(len(buf)) {
		return zero, eofError(len(buf), sizeOf[T](), len(buf))
	}
	x, err := readAt[T](buf, int(r.pos), order)
	if err != nil {
		return zero, err
	}
	r.pos += int64(sizeOf[T]())
	return x, nil
}

// writeNext encodes x at the writer position and advances past it.
func writeNext[T number](w *Writer, x T, order binary.ByteOrder) error {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	buf, err := w.window()
	if err != nil {
		return err
	}
	if w.pos > int64(len(buf)) {
		return eofError(len(buf), sizeOf[T](), len(buf))
	}
	off := int(w.pos)
	if err := writeAt(buf, x, off, order); err != nil {
		return err
	}
	w.s.dirty.mark(w.off+off, sizeOf[T]())
	w.pos += int64(sizeOf[T]())
	return nil
}

func (r *Reader) ReadInt8() (int8, error)   { return readNext[int8](r, binary.BigEndian) }
func (r *Reader) ReadUint8() (uint8, error) { return readNext[uint8](r, binary.BigEndian) }

func (r *Reader) ReadInt16(order binary.ByteOrder) (int16, error) {
	return readNext[int16](r, order)
}

func (r *Reader) ReadUint16(order binary.ByteOrder) (uint16, error) {
	return readNext[uint16](r, order)
}

func (r *Reader) ReadInt32(order binary.ByteOrder) (int32, error) {
	return readNext[int32](r, order)
}

func (r *Reader) ReadUint32(order binary.ByteOrder) (uint32, error) {
	return readNext[uint32](r, order)
}

func (r *Reader) ReadInt64(order binary.ByteOrder) (int64, error) {
	return readNext[int64](r, order)
}

func (r *Reader) ReadUint64(order binary.ByteOrder) (uint64, error) {
	return readNext[uint64](r, order)
}

func (r *Reader) ReadFloat32(order binary.ByteOrder) (float32, error) {
	return readNext[float32](r, order)
}

func (r *Reader) ReadFloat64(order binary.ByteOrder) (float64, error) {
	return readNext[float64](r, order)
}

// ReadInt reads an 8-byte signed integer.
func (r *Reader) ReadInt(order binary.ByteOrder) (int, error) {
	x, err := readNext[int64](r, order)
	return int(x), err
}

// ReadUint reads an 8-byte unsigned integer.
func (r *Reader) ReadUint(order binary.ByteOrder) (uint, error) {
	x, err := readNext[uint64](r, order)
	return uint(x), err
}

func (w *Writer) WriteInt8(x int8) error   { return writeNext(w, x, binary.BigEndian) }
func (w *Writer) WriteUint8(x uint8) error { return writeNext(w, x, binary.BigEndian) }

func (w *Writer) WriteInt16(x int16, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteUint16(x uint16, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteInt32(x int32, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteUint32(x uint32, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteInt64(x int64, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteUint64(x uint64, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteFloat32(x float32, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

func (w *Writer) WriteFloat64(x float64, order binary.ByteOrder) error {
	return writeNext(w, x, order)
}

// WriteInt writes x as an 8-byte signed integer.
func (w *Writer) WriteInt(x int, order binary.ByteOrder) error {
	return writeNext(w, int64(x), order)
}

// WriteUint writes x as an 8-byte unsigned integer.
func (w *Writer) WriteUint(x uint, order binary.ByteOrder) error {
	return writeNext(w, uint64(x), order)
}
