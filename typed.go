package fmmap

import "encoding/binary"

// Typed accessors decode fixed-width values at a byte offset. Multi-byte
// values take an explicit byte order, typically binary.BigEndian or
// binary.LittleEndian. Int and Uint are always 8 bytes wide.

func readNum[T number](v view, off int, order binary.ByteOrder) (T, error) {
	s := v.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		var zero T
		return zero, err
	}
	return readAt[T](buf, off, order)
}

func writeNum[T number](f *MmapFileMut, x T, off int, order binary.ByteOrder) error {
	s := f.st()
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, err := s.data()
	if err != nil {
		return err
	}
	if err := writeAt(buf, x, off, order); err != nil {
		return err
	}
	s.dirty.mark(off, sizeOf[T]())
	return nil
}

// ReadInt8 reads the byte at off as an int8.
func (v view) ReadInt8(off int) (int8, error) { return readNum[int8](v, off, binary.BigEndian) }

// ReadUint8 reads the byte at off.
func (v view) ReadUint8(off int) (uint8, error) { return readNum[uint8](v, off, binary.BigEndian) }

func (v view) ReadInt16(off int, order binary.ByteOrder) (int16, error) {
	return readNum[int16](v, off, order)
}

func (v view) ReadUint16(off int, order binary.ByteOrder) (uint16, error) {
	return readNum[uint16](v, off, order)
}

func (v view) ReadInt32(off int, order binary.ByteOrder) (int32, error) {
	return readNum[int32](v, off, order)
}

func (v view) ReadUint32(off int, order binary.ByteOrder) (uint32, error) {
	return readNum[uint32](v, off, order)
}

func (v view) ReadInt64(off int, order binary.ByteOrder) (int64, error) {
	return readNum[int64](v, off, order)
}

func (v view) ReadUint64(off int, order binary.ByteOrder) (uint64, error) {
	return readNum[uint64](v, off, order)
}

func (v view) ReadFloat32(off int, order binary.ByteOrder) (float32, error) {
	return readNum[float32](v, off, order)
}

func (v view) ReadFloat64(off int, order binary.ByteOrder) (float64, error) {
	return readNum[float64](v, off, order)
}

// ReadInt reads an 8-byte signed integer.
func (v view) ReadInt(off int, order binary.ByteOrder) (int, error) {
	x, err := readNum[int64](v, off, order)
	return int(x), err
}

// ReadUint reads an 8-byte unsigned integer.
func (v view) ReadUint(off int, order binary.ByteOrder) (uint, error) {
	x, err := readNum[uint64](v, off, order)
	return uint(x), err
}

// WriteInt8 stores x at off.
func (f *MmapFileMut) WriteInt8(x int8, off int) error { return writeNum(f, x, off, binary.BigEndian) }

// WriteUint8 stores x at off.
func (f *MmapFileMut) WriteUint8(x uint8, off int) error { return writeNum(f, x, off, binary.BigEndian) }

func (f *MmapFileMut) WriteInt16(x int16, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteUint16(x uint16, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteInt32(x int32, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteUint32(x uint32, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteInt64(x int64, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteUint64(x uint64, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteFloat32(x float32, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

func (f *MmapFileMut) WriteFloat64(x float64, off int, order binary.ByteOrder) error {
	return writeNum(f, x, off, order)
}

// WriteInt stores x as an 8-byte signed integer.
func (f *MmapFileMut) WriteInt(x int, off int, order binary.ByteOrder) error {
	return writeNum(f, int64(x), off, order)
}

// WriteUint stores x as an 8-byte unsigned integer.
func (f *MmapFileMut) WriteUint(x uint, off int, order binary.ByteOrder) error {
	return writeNum(f, uint64(x), off, order)
}
