package ringfile

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Write stores p as one record after the newest record and returns len(p).
//
// When the ring has no room for the record, the oldest whole records are
// discarded until it fits. A record whose framed size (length prefix plus
// payload) exceeds the capacity fails with ErrRecordTooLarge and leaves the
// ring untouched. If the data or header cannot be written, the header is left
// as it was and the ring keeps its previous contents.
func (r *Ring) Write(p []byte) (int, error) {
	if err := r.checkWritable(); err != nil {
		return 0, err
	}

	n := uint64(len(p))
	framed := uint64(VarintLen(n)) + n
	if framed > r.capacity {
		return 0, fmt.Errorf("%w: %d byte record needs %d bytes, capacity is %d", ErrRecordTooLarge, n, framed, r.capacity)
	}

	head, tail := r.head, r.tail
	var evicted, evictedBytes uint64
	for r.capacity-(tail-head) < framed && head < tail {
		length, prefix, err := r.frameAt(head, tail)
		if err != nil {
			return 0, err
		}
		size := uint64(prefix) + length
		r.log.Debug("evicting record", zap.Uint64("offset", head), zap.Uint64("size", size))
		head += size
		evicted++
		evictedBytes += size
	}

	frame := r.getFrame(int(framed))
	frame = AppendVarint(frame, n)
	frame = append(frame, p...)
	err := r.writeData(frame, tail)
	r.putFrame(frame)
	if err != nil {
		return 0, err
	}

	if err := r.commit(head, tail+framed); err != nil {
		return 0, err
	}

	atomic.AddUint64(&r.statAppends, 1)
	if evicted > 0 {
		atomic.AddUint64(&r.statEvictions, evicted)
		atomic.AddUint64(&r.statEvictedBytes, evictedBytes)
	}
	return len(p), nil
}

// commit persists head and tail. The data is synced before the header so a
// header on disk never points at bytes that are not there yet.
func (r *Ring) commit(head, tail uint64) error {
	if r.options.SyncWrites {
		if err := r.region.sync(); err != nil {
			return err
		}
	}
	if err := r.saveHeader(head, tail); err != nil {
		return r.restoreHeader(err)
	}
	if r.options.SyncWrites {
		if err := r.region.sync(); err != nil {
			return r.restoreHeader(err)
		}
	} else {
		r.dirty = true
	}
	r.head, r.tail = head, tail
	return nil
}

// restoreHeader writes the last committed head and tail back after a failed
// commit, so a later Flush or Close cannot persist the rejected record.
func (r *Ring) restoreHeader(cause error) error {
	if err := r.saveHeader(r.head, r.tail); err != nil {
		return multierr.Append(cause, fmt.Errorf("restore header: %w", err))
	}
	return cause
}
