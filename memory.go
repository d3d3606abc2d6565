package fmmap

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/fmmap/resource"
)

// memoryBackend is an owned buffer with the mapping surface. Growth beyond
// the initial contents is charged to the controller's memory budget.
type memoryBackend struct {
	buf       []byte
	name      string
	createdAt time.Time
	rc        *resource.Controller
	charged   int64
	exec      bool
}

func newMemoryBackend(path string, data []byte, rc *resource.Controller) *memoryBackend {
	return &memoryBackend{buf: data, name: path, createdAt: time.Now(), rc: rc}
}

func (m *memoryBackend) kind() Backend     { return BackendMemory }
func (m *memoryBackend) bytes() []byte     { return m.buf }
func (m *memoryBackend) path() string      { return m.name }
func (m *memoryBackend) isExec() bool      { return m.exec }
func (m *memoryBackend) isCow() bool       { return false }
func (m *memoryBackend) lock(lockOp) error { return nil }

func (m *memoryBackend) metadata() (MetaData, error) {
	return MetaData{
		backend:    BackendMemory,
		path:       m.name,
		size:       int64(len(m.buf)),
		modTime:    m.createdAt,
		accessTime: m.createdAt,
		changeTime: m.createdAt,
		createTime: m.createdAt,
	}, nil
}

func (m *memoryBackend) flush(off, n int, _ bool) error {
	return checkRange(len(m.buf), off, n)
}

// truncate resizes the buffer, zero-filling any growth.
func (m *memoryBackend) truncate(ctx context.Context, size int64) error {
	if size < 0 || size > math.MaxInt {
		return newError(KindOutOfRange, m.name, fmt.Sprintf("invalid size %d", size), ErrOutOfRange)
	}
	n := int(size)
	old := len(m.buf)

	switch {
	case n > old:
		delta := int64(n - old)
		if err := m.rc.AcquireMemory(ctx, delta); err != nil {
			return newError(KindTruncationFailed, m.name, "memory budget", err)
		}
		m.charged += delta
		if n <= cap(m.buf) {
			m.buf = m.buf[:n]
			clear(m.buf[old:])
		} else {
			grown := make([]byte, n)
			copy(grown, m.buf)
			m.buf = grown
		}
	case n < old:
		if freed := min(int64(old-n), m.charged); freed > 0 {
			m.rc.ReleaseMemory(freed)
			m.charged -= freed
		}
		m.buf = m.buf[:n]
	}
	return nil
}

// freeze shares the buffer with the read-only result.
func (m *memoryBackend) freeze(exec bool) (backend, error) {
	m.exec = exec
	return m, nil
}

func (m *memoryBackend) release() error {
	if m.charged > 0 {
		m.rc.ReleaseMemory(m.charged)
		m.charged = 0
	}
	m.buf = nil
	return nil
}

func (m *memoryBackend) remove() error                 { return m.release() }
func (m *memoryBackend) closeWithTruncate(int64) error { return m.release() }
func (m *memoryBackend) abandon(bool) error            { return m.release() }
