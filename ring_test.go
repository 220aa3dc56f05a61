package ringfile

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// helper to create a ring in a temporary directory with deterministic options
func newTestRing(t *testing.T, capacity uint64) (*Ring, string) {
	return newTestRingWithOpts(t, capacity, DefaultOptions())
}

func newTestRingWithOpts(t *testing.T, capacity uint64, opts Options) (*Ring, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ring")
	r, err := CreateWithOptions(path, capacity, opts)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, path
}

func openTest(t *testing.T, path string, mode Mode) *Ring {
	t.Helper()
	r, err := Open(path, mode)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func readAll(t *testing.T, r *Ring) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		rec, err := r.ReadRecord()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestEmptyRingRead(t *testing.T) {
	for _, capacity := range []uint64{1, 2, 100, 1024} {
		w, path := newTestRing(t, capacity)
		require.NoError(t, w.Close())

		r := openTest(t, path, ModeRead)
		_, ok, err := r.PeekNextSize()
		require.NoError(t, err)
		require.False(t, ok)

		_, err = r.ReadRecord()
		require.ErrorIs(t, err, io.EOF)
		require.Equal(t, Usage{Capacity: capacity, Used: 0, Free: capacity}, r.Usage())
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	const capacity = 1024
	sizes := []int{0, 1, 127, 128, 500, capacity - 2} // capacity-2 needs a 2 byte prefix

	for _, size := range sizes {
		w, path := newTestRing(t, capacity)
		payload := make([]byte, size)
		rand.Read(payload)

		n, err := w.Write(payload)
		require.NoError(t, err)
		require.Equal(t, size, n)
		require.NoError(t, w.Close())

		r := openTest(t, path, ModeRead)
		got, err := r.ReadRecord()
		require.NoError(t, err, "size %d", size)
		require.Equal(t, payload, got, "size %d", size)

		_, err = r.ReadRecord()
		require.ErrorIs(t, err, io.EOF)
	}
}

func TestFIFOOrdering(t *testing.T) {
	w, path := newTestRing(t, 4096)
	var want [][]byte
	for i := 0; i < 100; i++ {
		p := bytes.Repeat([]byte{byte('a' + i%26)}, i%30)
		want = append(want, p)
		_, err := w.Write(p)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	r := openTest(t, path, ModeRead)
	got := readAll(t, r)
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i], got[i], "record %d", i)
	}
	require.Equal(t, uint64(100), r.GetStats().Reads)
}

func TestHelloGoodbye(t *testing.T) {
	w, path := newTestRing(t, 1024)
	_, err := w.Write([]byte("Hello, World!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	a := openTest(t, path, ModeAppend)
	require.Equal(t, uint64(14), a.Tail())
	_, err = a.Write([]byte("Goodbye, World!"))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	r := openTest(t, path, ModeRead)
	got, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", string(got))
	got, err = r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, "Goodbye, World!", string(got))
	_, err = r.ReadRecord()
	require.ErrorIs(t, err, io.EOF)
}

func TestFileLayout(t *testing.T) {
	w, path := newTestRing(t, 1024)
	_, err := w.Write([]byte("Hello, World!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+1024)

	want := []byte("RING" +
		"\x01\x00\x00\x00" + // version
		"\x00\x04\x00\x00\x00\x00\x00\x00" + // capacity
		"\x00\x00\x00\x00\x00\x00\x00\x00" + // head
		"\x0e\x00\x00\x00\x00\x00\x00\x00" + // tail
		"\x0d" + // record length
		"Hello, World!")
	require.Equal(t, want, data[:len(want)])
}

func TestCreateExisting(t *testing.T) {
	w, path := newTestRing(t, 64)
	require.NoError(t, w.Close())

	_, err := Create(path, 64)
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.ErrorIs(t, err, fs.ErrExist)
}

func TestCreateMissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does not exist", "ring")
	_, err := Create(path, 1024)
	require.ErrorIs(t, err, ErrOpenFailure)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCreateZeroCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring")
	_, err := Create(path, 0)
	require.ErrorIs(t, err, ErrOpenFailure)
	_, err = os.Stat(path)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.ring")
	for _, mode := range []Mode{ModeRead, ModeAppend} {
		_, err := Open(path, mode)
		require.ErrorIs(t, err, ErrOpenFailure, "mode %v", mode)
		require.ErrorIs(t, err, fs.ErrNotExist, "mode %v", mode)
	}
}

func TestOpenCreateModeRejected(t *testing.T) {
	_, path := newTestRing(t, 64)
	_, err := Open(path, ModeCreate)
	require.ErrorIs(t, err, ErrModeViolation)
	_, err = Open(path, Mode(42))
	require.ErrorIs(t, err, ErrModeViolation)
}

func TestOpenInvalidFormat(t *testing.T) {
	valid := make([]byte, HeaderSize+64)
	encodeHeader(valid, header{Capacity: 64})

	tests := map[string]func([]byte) []byte{
		"empty file":     func(b []byte) []byte { return nil },
		"short header":   func(b []byte) []byte { return b[:10] },
		"bad magic":      func(b []byte) []byte { copy(b, "GNIR"); return b },
		"bad version":    func(b []byte) []byte { b[4] = 9; return b },
		"zero capacity":  func(b []byte) []byte { binary.LittleEndian.PutUint64(b[8:], 0); return b },
		"truncated data": func(b []byte) []byte { return b[:HeaderSize+10] },
		"tail before head": func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[16:], 10)
			binary.LittleEndian.PutUint64(b[24:], 5)
			return b
		},
		"used over capacity": func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[24:], 65)
			return b
		},
	}

	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.ring")
			data := corrupt(append([]byte(nil), valid...))
			require.NoError(t, os.WriteFile(path, data, 0o644))

			for _, mode := range []Mode{ModeRead, ModeAppend} {
				_, err := Open(path, mode)
				require.ErrorIs(t, err, ErrInvalidFormat, "mode %v", mode)
				require.ErrorIs(t, err, ErrOpenFailure, "mode %v", mode)
			}

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, data, after, "file must be left untouched")
		})
	}
}

func TestModeViolation(t *testing.T) {
	w, path := newTestRing(t, 64)
	_, err := w.Write([]byte("x"))
	require.NoError(t, err)

	_, err = w.ReadRecord()
	require.ErrorIs(t, err, ErrModeViolation)
	_, _, err = w.PeekNextSize()
	require.ErrorIs(t, err, ErrModeViolation)
	require.NoError(t, w.Close())

	a := openTest(t, path, ModeAppend)
	_, err = a.ReadRecord()
	require.ErrorIs(t, err, ErrModeViolation)

	r := openTest(t, path, ModeRead)
	_, err = r.Write([]byte("y"))
	require.ErrorIs(t, err, ErrModeViolation)
	require.NoError(t, r.Flush())
}

func TestUseAfterClose(t *testing.T) {
	w, path := newTestRing(t, 64)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("x"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, w.Flush(), ErrClosed)

	r, err := Open(path, ModeRead)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	_, err = r.ReadRecord()
	require.ErrorIs(t, err, ErrClosed)
	_, _, err = r.PeekNextSize()
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, r.Reload(), ErrClosed)
}

func TestMmapRoundTrip(t *testing.T) {
	opts := DefaultOptions()
	opts.UseMmap = true
	w, path := newTestRingWithOpts(t, 40, opts)

	var want [][]byte
	for i := 0; i < 20; i++ {
		p := bytes.Repeat([]byte{byte('A' + i)}, 7+i%5)
		_, err := w.Write(p)
		require.NoError(t, err)
		want = append(want, p)
	}
	require.NoError(t, w.Close())

	r, err := OpenWithOptions(path, ModeRead, opts)
	require.NoError(t, err)
	defer r.Close()

	got := readAll(t, r)
	require.NotEmpty(t, got)
	require.Equal(t, want[len(want)-len(got):], got)
}

func TestUnsyncedWritesFlushedOnClose(t *testing.T) {
	opts := DefaultOptions()
	opts.SyncWrites = false
	opts.BufferPoolSize = 0
	w, path := newTestRingWithOpts(t, 128, opts)

	for _, s := range []string{"one", "two", "three"} {
		_, err := w.Write([]byte(s))
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	_, err := w.Write([]byte("four"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := openTest(t, path, ModeRead)
	got := readAll(t, r)
	require.Equal(t, [][]byte{[]byte("one"), []byte("two"), []byte("three"), []byte("four")}, got)
}

func TestDroppedHandleReleased(t *testing.T) {
	opts := DefaultOptions()
	opts.UseMmap = true
	path := filepath.Join(t.TempDir(), "dropped.ring")

	func() {
		w, err := CreateWithOptions(path, 64, opts)
		require.NoError(t, err)
		_, err = w.Write([]byte("orphan"))
		require.NoError(t, err)
	}()
	for i := 0; i < 3; i++ {
		runtime.GC()
	}

	a, err := OpenWithOptions(path, ModeAppend, opts)
	require.NoError(t, err)
	_, err = a.Write([]byte("adopted"))
	require.NoError(t, err)
	require.NoError(t, a.Close())

	r := openTest(t, path, ModeRead)
	got := readAll(t, r)
	require.Equal(t, [][]byte{[]byte("orphan"), []byte("adopted")}, got)
}

func TestFinalizeReleasesOnce(t *testing.T) {
	opts := DefaultOptions()
	opts.UseMmap = true
	w, _ := newTestRingWithOpts(t, 64, opts)

	w.finalize()
	require.Nil(t, w.region.mmap)
	w.finalize()
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("x"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestModeString(t *testing.T) {
	require.Equal(t, "create", ModeCreate.String())
	require.Equal(t, "append", ModeAppend.String())
	require.Equal(t, "read", ModeRead.String())
	require.Equal(t, "Mode(9)", Mode(9).String())
}
