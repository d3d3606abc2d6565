package fmmap

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCheckRange(t *testing.T) {
	tests := []struct {
		length, off, n int
		ok             bool
	}{
		{10, 0, 10, true},
		{10, 10, 0, true},
		{10, 9, 2, false},
		{10, 11, 0, false},
		{10, -1, 1, false},
		{10, 0, -1, false},
		{10, math.MaxInt, 2, false},
	}
	for _, tt := range tests {
		err := checkRange(tt.length, tt.off, tt.n)
		if tt.ok {
			assert.NoError(t, err, "%+v", tt)
		} else {
			assert.ErrorIs(t, err, ErrUnexpectedEnd, "%+v", tt)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	buf := make([]byte, 8)

	encode(buf, float64(math.Pi), binary.LittleEndian)
	assert.Equal(t, math.Pi, decode[float64](buf, binary.LittleEndian))
	assert.Equal(t, math.Float64bits(math.Pi), binary.LittleEndian.Uint64(buf))

	encode(buf, int32(-2), binary.BigEndian)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xfe}, buf[:4])

	assert.Equal(t, 1, sizeOf[int8]())
	assert.Equal(t, 4, sizeOf[float32]())
	assert.Equal(t, 8, sizeOf[uint64]())
}

func TestDirtyPages(t *testing.T) {
	d := &dirtyPages{rb: roaring.New(), pageSize: 100}

	d.mark(0, 1)
	d.mark(150, 100)
	d.mark(420, 10)
	d.mark(500, 0)
	assert.Equal(t, uint64(4), d.count())

	snap := d.snapshot()
	want := []pageRun{{first: 0, count: 3}, {first: 4, count: 1}}
	if diff := cmp.Diff(want, runs(snap), cmp.AllowUnexported(pageRun{})); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}

	d.mark(900, 1)
	d.forget(snap)
	assert.Equal(t, uint64(1), d.count())

	var none *dirtyPages
	none.mark(0, 10)
	none.reset()
	assert.Zero(t, none.count())
}

func TestErrorMatching(t *testing.T) {
	err := newError(KindTruncationFailed, "/tmp/x", "copy-on-write", ErrInvalidOperation)

	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.NotErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, "fmmap: truncation failed /tmp/x: copy-on-write", err.Error())

	assert.ErrorIs(t, ErrEmptyMmap, ErrInvalidOperation)
	assert.NotErrorIs(t, ErrInvalidOperation, ErrEmptyMmap)
	assert.NotErrorIs(t, ErrStaleView, ErrEmptyMmap)
	assert.Equal(t, "invalid operation", KindInvalidOperation.String())
}
