package ringfile

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// region is the backing store of one ring: the header followed by the data
// region, addressed by absolute file offset.
//
// When mmap is enabled the whole file is mapped with unix.Mmap and reads and
// writes are plain memory copies; otherwise they go through ReadAt/WriteAt.
type region struct {
	file     *os.File
	mmap     []byte // nil when mmap is off
	filePath string
	fileSize uint64
	writable bool
}

func openRegion(f *os.File, path string, useMmap, writable bool) (*region, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	g := &region{
		file:     f,
		filePath: path,
		fileSize: uint64(st.Size()),
		writable: writable,
	}
	// Files too small to hold a header are left unmapped; loadHeader rejects them.
	if useMmap && st.Size() >= HeaderSize {
		prot := unix.PROT_READ
		if writable {
			prot |= unix.PROT_WRITE
		}
		m, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), prot, unix.MAP_SHARED)
		if err != nil {
			return nil, fmt.Errorf("mmap %s: %w", path, err)
		}
		g.mmap = m
	}
	return g, nil
}

func (g *region) size() uint64 { return g.fileSize }

func (g *region) readAt(p []byte, off uint64) error {
	if g.mmap != nil {
		if off+uint64(len(p)) > uint64(len(g.mmap)) {
			return fmt.Errorf("%w: read %d bytes at %d past end of %s: %w", ErrIO, len(p), off, g.filePath, io.ErrUnexpectedEOF)
		}
		copy(p, g.mmap[off:])
		return nil
	}
	n, err := g.file.ReadAt(p, int64(off))
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: read %d bytes at %d from %s (got %d): %w", ErrIO, len(p), off, g.filePath, n, err)
}

func (g *region) writeAt(p []byte, off uint64) error {
	if !g.writable {
		return fmt.Errorf("%w: %s is open read-only", ErrModeViolation, g.filePath)
	}
	if g.mmap != nil {
		if off+uint64(len(p)) > uint64(len(g.mmap)) {
			return fmt.Errorf("%w: write %d bytes at %d past end of %s", ErrIO, len(p), off, g.filePath)
		}
		copy(g.mmap[off:], p)
		return nil
	}
	if _, err := g.file.WriteAt(p, int64(off)); err != nil {
		return fmt.Errorf("%w: write %d bytes at %d to %s: %w", ErrIO, len(p), off, g.filePath, err)
	}
	return nil
}

func (g *region) sync() error {
	if !g.writable {
		return nil
	}
	if g.mmap != nil {
		if err := unix.Msync(g.mmap, unix.MS_SYNC); err != nil {
			return fmt.Errorf("%w: msync %s: %w", ErrIO, g.filePath, err)
		}
		return nil
	}
	if err := g.file.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", ErrIO, g.filePath, err)
	}
	return nil
}

// close unmaps and closes the file. It must be called exactly once.
func (g *region) close() error {
	var err error
	if g.mmap != nil {
		if uerr := unix.Munmap(g.mmap); uerr != nil {
			err = multierr.Append(err, fmt.Errorf("munmap %s: %w", g.filePath, uerr))
		}
		g.mmap = nil
	}
	if cerr := g.file.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("close %s: %w", g.filePath, cerr))
	}
	return err
}
