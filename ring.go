package ringfile

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Mode is the access mode a Ring is opened with.
type Mode uint8

const (
	// ModeCreate is the mode of a ring returned by Create. It accepts writes.
	ModeCreate Mode = iota + 1
	// ModeAppend opens an existing ring for writes.
	ModeAppend
	// ModeRead opens an existing ring for sequential reads.
	ModeRead
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeAppend:
		return "append"
	case ModeRead:
		return "read"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

func (m Mode) writable() bool { return m == ModeCreate || m == ModeAppend }

// Ring is an open handle on a ring file.
//
// A Ring is not safe for concurrent use; only GetStats and ResetStats may be
// called from other goroutines. Multiple handles on the same file, in this or
// another process, need external locking.
type Ring struct {
	region  *region
	path    string
	mode    Mode
	options Options
	log     *zap.Logger
	bufPool *sync.Pool // nil when BufferPoolSize is 0

	capacity uint64
	head     uint64
	tail     uint64
	cursor   uint64 // next record to read, read mode only
	dirty    bool   // header written but not yet synced
	closed   bool

	statAppends      uint64
	statEvictions    uint64
	statEvictedBytes uint64
	statReads        uint64
}

// Create makes a new ring file at path with capacity bytes of record storage,
// using DefaultOptions. The file must not exist.
func Create(path string, capacity uint64) (*Ring, error) {
	return CreateWithOptions(path, capacity, DefaultOptions())
}

// CreateWithOptions is Create with custom options.
func CreateWithOptions(path string, capacity uint64, opts Options) (*Ring, error) {
	if capacity == 0 || capacity > math.MaxInt64-HeaderSize {
		return nil, fmt.Errorf("%w: %s: invalid capacity %d", ErrOpenFailure, path, capacity)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, opts.fileMode())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}
	if err := f.Truncate(int64(HeaderSize + capacity)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: allocate %s: %w", ErrOpenFailure, path, err)
	}

	r, err := newRing(f, path, ModeCreate, opts)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	r.capacity = capacity
	if err := r.saveHeader(0, 0); err == nil {
		err = r.region.sync()
	}
	if err != nil {
		r.release()
		os.Remove(path)
		return nil, fmt.Errorf("%w: write header of %s: %w", ErrOpenFailure, path, err)
	}

	r.log.Info("created ring", zap.Uint64("capacity", capacity))
	return r, nil
}

// Open opens an existing ring file for reading (ModeRead) or appending
// (ModeAppend) using DefaultOptions.
func Open(path string, mode Mode) (*Ring, error) {
	return OpenWithOptions(path, mode, DefaultOptions())
}

// OpenWithOptions is Open with custom options.
//
// A file that is not a ring fails with an error matching both ErrOpenFailure
// and ErrInvalidFormat.
func OpenWithOptions(path string, mode Mode, opts Options) (*Ring, error) {
	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeAppend:
		flag = os.O_RDWR
	default:
		return nil, fmt.Errorf("%w: cannot open %s in %v mode", ErrModeViolation, path, mode)
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}
	r, err := newRing(f, path, mode, opts)
	if err != nil {
		return nil, err
	}
	h, err := r.loadHeader()
	if err != nil {
		r.release()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailure, path, err)
	}
	r.capacity, r.head, r.tail = h.Capacity, h.Head, h.Tail
	r.cursor = h.Head

	r.log.Info("opened ring",
		zap.Uint64("capacity", h.Capacity),
		zap.Uint64("head", h.Head),
		zap.Uint64("tail", h.Tail))
	return r, nil
}

// newRing wraps f in a Ring. f is closed if the region cannot be set up.
func newRing(f *os.File, path string, mode Mode, opts Options) (*Ring, error) {
	g, err := openRegion(f, path, opts.UseMmap, mode.writable())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}

	r := &Ring{
		region:  g,
		path:    path,
		mode:    mode,
		options: opts,
		log:     opts.logger().With(zap.String("path", path), zap.Stringer("mode", mode)),
	}
	if opts.BufferPoolSize > 0 {
		r.bufPool = &sync.Pool{}
	}
	// Handles dropped without Close still release the file and mapping.
	runtime.SetFinalizer(r, (*Ring).finalize)
	return r, nil
}

// Path returns the path the ring was opened with.
func (r *Ring) Path() string { return r.path }

// Mode returns the access mode of the handle.
func (r *Ring) Mode() Mode { return r.mode }

func (r *Ring) checkWritable() error {
	if r.closed {
		return ErrClosed
	}
	if !r.mode.writable() {
		return fmt.Errorf("%w: write on %s opened in %v mode", ErrModeViolation, r.path, r.mode)
	}
	return nil
}

func (r *Ring) checkReadable() error {
	if r.closed {
		return ErrClosed
	}
	if r.mode != ModeRead {
		return fmt.Errorf("%w: read on %s opened in %v mode", ErrModeViolation, r.path, r.mode)
	}
	return nil
}
