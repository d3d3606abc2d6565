//go:build !linux

package mmap

// AtomicRemap reports whether a live mapping may be resized in place while
// the underlying file changes length.
const AtomicRemap = false

const (
	populateFlag = 0
	stackFlag    = 0
)

func osRemap(_ []byte, _ int) ([]byte, error) {
	return nil, errRemapUnsupported
}
