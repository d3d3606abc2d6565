package fmmap

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// number is the set of fixed-width values readable from and writable to a buffer.
type number interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

func sizeOf[T number]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// checkRange reports an end-of-data error unless [off, off+n) lies within length.
func checkRange(length, off, n int) error {
	if off < 0 || n < 0 || off > length-n {
		return eofError(off, n, length)
	}
	return nil
}

func decode[T number](b []byte, order binary.ByteOrder) T {
	var v T
	switch p := any(&v).(type) {
	case *int8:
		*p = int8(b[0])
	case *uint8:
		*p = b[0]
	case *int16:
		*p = int16(order.Uint16(b))
	case *uint16:
		*p = order.Uint16(b)
	case *int32:
		*p = int32(order.Uint32(b))
	case *uint32:
		*p = order.Uint32(b)
	case *int64:
		*p = int64(order.Uint64(b))
	case *uint64:
		*p = order.Uint64(b)
	case *float32:
		*p = math.Float32frombits(order.Uint32(b))
	case *float64:
		*p = math.Float64frombits(order.Uint64(b))
	}
	return v
}

func encode[T number](b []byte, v T, order binary.ByteOrder) {
	switch x := any(v).(type) {
	case int8:
		b[0] = byte(x)
	case uint8:
		b[0] = x
	case int16:
		order.PutUint16(b, uint16(x))
	case uint16:
		order.PutUint16(b, x)
	case int32:
		order.PutUint32(b, uint32(x))
	case uint32:
		order.PutUint32(b, x)
	case int64:
		order.PutUint64(b, uint64(x))
	case uint64:
		order.PutUint64(b, x)
	case float32:
		order.PutUint32(b, math.Float32bits(x))
	case float64:
		order.PutUint64(b, math.Float64bits(x))
	}
}

func readAt[T number](buf []byte, off int, order binary.ByteOrder) (T, error) {
	n := sizeOf[T]()
	if err := checkRange(len(buf), off, n); err != nil {
		var zero T
		return zero, err
	}
	return decode[T](buf[off:off+n], order), nil
}

func writeAt[T number](buf []byte, v T, off int, order binary.ByteOrder) error {
	n := sizeOf[T]()
	if err := checkRange(len(buf), off, n); err != nil {
		return err
	}
	encode(buf[off:off+n], v, order)
	return nil
}

// zeroRange clears buf[start:end] with end clamped to len(buf).
// start beyond len(buf) is a caller bug and panics.
func zeroRange(buf []byte, start, end int) {
	if start < 0 || start > len(buf) {
		panic("fmmap: zero range start out of bounds")
	}
	end = min(end, len(buf))
	if end <= start {
		return
	}
	clear(buf[start:end])
}
