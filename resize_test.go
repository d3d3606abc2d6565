package fmmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fmmap/internal/fs"
	"github.com/hupe1980/fmmap/internal/mmap"
)

func newDisk(t *testing.T, fsys fs.FileSystem, content string) *diskBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resize.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	o := DefaultOptions().withFS(fsys)
	d, err := openDisk(path, openReadWrite, o, o.env())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.release() })
	return d
}

func strategyName(atomic bool) string {
	if atomic {
		return "in-place"
	}
	return "unmap-first"
}

func TestResize_BothStrategies(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		t.Run(strategyName(atomic), func(t *testing.T) {
			if atomic && !mmap.AtomicRemap {
				t.Skip("in-place remap is Linux only")
			}
			d := newDisk(t, fs.Default, "0123456789")

			require.NoError(t, d.resize(10000, atomic))
			assert.Len(t, d.bytes(), 10000)
			assert.Equal(t, "0123456789", string(d.bytes()[:10]))

			require.NoError(t, d.resize(4, atomic))
			assert.Equal(t, "0123", string(d.bytes()))

			require.NoError(t, d.resize(0, atomic))
			assert.Empty(t, d.bytes())

			require.NoError(t, d.resize(2, atomic))
			assert.Equal(t, []byte{0, 0}, d.bytes())
		})
	}
}

func TestResize_TruncateFailureKeepsMapping(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		t.Run(strategyName(atomic), func(t *testing.T) {
			fsys := fs.NewFaultyFS(nil)
			d := newDisk(t, fsys, "still here")

			fsys.AddRule("resize.bin", fs.Fault{FailOnTruncate: true, FailAfterBytes: -1})

			err := d.resize(100, atomic)
			require.Error(t, err)
			assert.ErrorIs(t, err, fs.ErrInjected)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, KindTruncationFailed, e.Kind)

			assert.Equal(t, "still here", string(d.bytes()), "mapping must survive a failed truncate")
		})
	}
}

func TestTruncate_RemapFailureEmptiesFacade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offset.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	f, err := DefaultOptions().Offset(50).OpenMut(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, 50, f.Len())

	// Shrinking below the mapping offset leaves nothing to map.
	err = f.Truncate(context.Background(), 10)
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindRemapFailed, e.Kind)
	assert.Equal(t, BackendEmpty, f.Backend())
	assert.NoError(t, f.Close())
}

func TestCreate_SyncDirFailure(t *testing.T) {
	dir := t.TempDir()
	fsys := fs.NewFaultyFS(nil)
	fsys.AddRule(dir, fs.Fault{FailOnSync: true, FailAfterBytes: -1})

	_, err := DefaultOptions().withFS(fsys).MaxSize(16).CreateMut(filepath.Join(dir, "new.bin"))
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindSyncDirFailed, e.Kind)
}

func TestCreate_PresizeSyncsDirectory(t *testing.T) {
	fsys := fs.NewFaultyFS(nil)
	dir := t.TempDir()

	f, err := DefaultOptions().withFS(fsys).MaxSize(16).CreateMut(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, 1, fsys.Truncates())
	assert.Equal(t, 1, fsys.Syncs())
	require.NoError(t, f.Close())

	f, err = DefaultOptions().withFS(fsys).CreateMut(filepath.Join(dir, "b.bin"))
	require.NoError(t, err)
	assert.Equal(t, 1, fsys.Truncates(), "no presize without MaxSize")
	require.NoError(t, f.Close())
}

func TestRemove_FailureLeavesFacadeEmpty(t *testing.T) {
	fsys := fs.NewFaultyFS(nil)
	path := filepath.Join(t.TempDir(), "stuck.bin")

	f, err := DefaultOptions().withFS(fsys).MaxSize(16).CreateMut(path)
	require.NoError(t, err)

	fsys.AddRule("stuck.bin", fs.Fault{FailOnRemove: true, FailAfterBytes: -1})
	err = f.Remove(context.Background())
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Equal(t, BackendEmpty, f.Backend())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, fi.Size(), "file is emptied before removal")
}

func TestCloseWithTruncate_FailureClosesFile(t *testing.T) {
	fsys := fs.NewFaultyFS(nil)
	path := filepath.Join(t.TempDir(), "cwt.bin")

	f, err := DefaultOptions().withFS(fsys).MaxSize(16).CreateMut(path)
	require.NoError(t, err)

	fsys.AddRule("cwt.bin", fs.Fault{FailOnTruncate: true, FailAfterBytes: -1})
	err = f.CloseWithTruncate(context.Background(), 4)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindTruncationFailed, e.Kind)
	assert.Equal(t, BackendEmpty, f.Backend())
}

func TestOpen_FaultyOpen(t *testing.T) {
	fsys := fs.NewFaultyFS(nil)
	fsys.AddRule("nope.bin", fs.Fault{FailOnOpen: true})

	_, err := DefaultOptions().withFS(fsys).OpenMut(filepath.Join(t.TempDir(), "nope.bin"))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindOpenFailed, e.Kind)
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestResize_GrowFlushReopen(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		t.Run(strategyName(atomic), func(t *testing.T) {
			if atomic && !mmap.AtomicRemap {
				t.Skip("in-place remap is Linux only")
			}
			path := filepath.Join(t.TempDir(), "grow.bin")
			require.NoError(t, os.WriteFile(path, []byte("head"), 0o644))

			o := DefaultOptions()
			d, err := openDisk(path, openReadWrite, o, o.env())
			require.NoError(t, err)

			const size = 2*4096 + 17
			require.NoError(t, d.resize(size, atomic))
			copy(d.bytes()[size-4:], "tail")
			require.NoError(t, d.flush(0, size, false))
			require.NoError(t, d.release())

			f, err := Open(path)
			require.NoError(t, err)
			defer f.Close()

			want := make([]byte, size)
			copy(want, "head")
			copy(want[size-4:], "tail")
			assert.Equal(t, want, f.AsSlice())
		})
	}
}

func TestFreeze_FailureKeepsDirtyPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freeze.bin")
	f, err := DefaultOptions().MaxSize(64).CreateMut(path)
	require.NoError(t, err)

	require.NoError(t, f.WriteAll([]byte("dirty"), 0))
	require.Equal(t, 1, f.DirtyPages())

	// A region that is already gone cannot change protection.
	d := f.s.be.(*diskBackend)
	require.NoError(t, d.region.Unmap())

	_, err = f.Freeze()
	require.ErrorIs(t, err, mmap.ErrClosed)
	assert.Equal(t, BackendDisk, f.Backend())
	assert.Equal(t, 1, f.DirtyPages())
	assert.NoError(t, f.Close())
}
