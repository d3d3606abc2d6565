//go:build unix

package fmmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fmmap"
)

func TestAdvisoryLocks(t *testing.T) {
	path := writeTempFile(t, "lock.bin", []byte("locked"))

	a, err := fmmap.OpenMut(path)
	require.NoError(t, err)
	defer a.Close()

	b, err := fmmap.Open(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.LockExclusive())
	assert.ErrorIs(t, b.TryLockShared(), fmmap.ErrWouldBlock)
	assert.ErrorIs(t, b.TryLockExclusive(), fmmap.ErrWouldBlock)
	require.NoError(t, a.Unlock())

	require.NoError(t, b.LockShared())
	require.NoError(t, a.TryLockShared())
	assert.ErrorIs(t, a.TryLockExclusive(), fmmap.ErrWouldBlock, "upgrade blocks while another shared lock is held")
	require.NoError(t, b.Unlock())
	require.NoError(t, a.TryLockExclusive())
	require.NoError(t, a.Unlock())

	mem := fmmap.NewMemory("mem", nil)
	defer mem.Close()
	assert.NoError(t, mem.TryLockExclusive())
}
