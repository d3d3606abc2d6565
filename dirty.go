package fmmap

import (
	"os"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// dirtyPages records which pages of a writable disk mapping were written
// through the checked API since the last flush.
type dirtyPages struct {
	mu       sync.Mutex
	rb       *roaring.Bitmap
	pageSize int
}

func newDirtyPages() *dirtyPages {
	return &dirtyPages{rb: roaring.New(), pageSize: os.Getpagesize()}
}

// mark records [off, off+n). A nil tracker ignores the call.
func (d *dirtyPages) mark(off, n int) {
	if d == nil || n <= 0 {
		return
	}
	first := uint64(off / d.pageSize)
	last := uint64((off + n - 1) / d.pageSize)

	d.mu.Lock()
	d.rb.AddRange(first, last+1)
	d.mu.Unlock()
}

// snapshot returns a copy of the current set.
func (d *dirtyPages) snapshot() *roaring.Bitmap {
	if d == nil {
		return roaring.New()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rb.Clone()
}

// forget removes the pages in flushed, leaving pages dirtied since the
// snapshot in place.
func (d *dirtyPages) forget(flushed *roaring.Bitmap) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.rb.AndNot(flushed)
	d.mu.Unlock()
}

func (d *dirtyPages) reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.rb.Clear()
	d.mu.Unlock()
}

// count returns the number of dirty pages.
func (d *dirtyPages) count() uint64 {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rb.GetCardinality()
}

// pageRun is a run of consecutive page indexes.
type pageRun struct {
	first, count int
}

// runs coalesces the set bits of rb into runs.
func runs(rb *roaring.Bitmap) []pageRun {
	var out []pageRun
	it := rb.Iterator()
	for it.HasNext() {
		p := int(it.Next())
		if n := len(out); n > 0 && out[n-1].first+out[n-1].count == p {
			out[n-1].count++
			continue
		}
		out = append(out, pageRun{first: p, count: 1})
	}
	return out
}
