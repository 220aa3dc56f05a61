package ringfile

import (
	"fmt"
	"io"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"
)

// PeekNextSize returns the payload length of the next record without
// consuming it. ok is false when every record has been read.
func (r *Ring) PeekNextSize() (size uint64, ok bool, err error) {
	if err := r.checkReadable(); err != nil {
		return 0, false, err
	}
	if r.cursor == r.tail {
		return 0, false, nil
	}
	length, _, err := r.frameAt(r.cursor, r.tail)
	if err != nil {
		return 0, false, err
	}
	return length, true, nil
}

// AppendRecord reads the next record, appends its payload to dst and returns
// the extended slice. It returns io.EOF once every record has been read.
//
// After an ErrInvalidFraming error the position of the reader is undefined and
// the handle should not be read further.
func (r *Ring) AppendRecord(dst []byte) ([]byte, error) {
	if err := r.checkReadable(); err != nil {
		return dst, err
	}
	if r.cursor == r.tail {
		return dst, io.EOF
	}

	length, prefix, err := r.frameAt(r.cursor, r.tail)
	if err != nil {
		return dst, err
	}
	start := len(dst)
	dst = slices.Grow(dst, int(length))[:start+int(length)]
	if err := r.readData(dst[start:], r.cursor+uint64(prefix)); err != nil {
		return dst[:start], err
	}
	r.cursor += uint64(prefix) + length

	atomic.AddUint64(&r.statReads, 1)
	return dst, nil
}

// ReadRecord returns the payload of the next record, or io.EOF once every
// record has been read.
func (r *Ring) ReadRecord() ([]byte, error) {
	rec, err := r.AppendRecord(nil)
	if err == nil && rec == nil {
		rec = []byte{}
	}
	return rec, err
}

// Reload re-reads head and tail from disk, picking up records appended
// through another handle since this one was opened. A reader whose next
// record has meanwhile been evicted continues at the new oldest record.
//
// Head and tail never move backwards; a header with a smaller tail fails with
// ErrInvalidFormat and the handle keeps its previous state.
func (r *Ring) Reload() error {
	if r.closed {
		return ErrClosed
	}
	h, err := r.loadHeader()
	if err != nil {
		return err
	}
	if h.Capacity != r.capacity {
		return fmt.Errorf("%w: capacity changed from %d to %d", ErrInvalidFormat, r.capacity, h.Capacity)
	}
	if h.Tail < r.tail {
		return fmt.Errorf("%w: tail moved back from %d to %d", ErrInvalidFormat, r.tail, h.Tail)
	}
	r.head, r.tail = h.Head, h.Tail

	if r.mode == ModeRead && r.cursor < h.Head {
		r.log.Warn("reader fell behind eviction, skipping to head",
			zap.Uint64("cursor", r.cursor),
			zap.Uint64("head", h.Head),
			zap.Uint64("skipped", h.Head-r.cursor))
		r.cursor = h.Head
	}
	return nil
}
