package ringfile

import "fmt"

// physical maps a logical offset to its absolute file offset.
func (r *Ring) physical(logical uint64) uint64 {
	return HeaderSize + logical%r.capacity
}

// firstRun returns how many of the n bytes starting at logical fit before the
// end of the data region. The remaining n-firstRun bytes continue at the start
// of the region.
func (r *Ring) firstRun(logical, n uint64) uint64 {
	room := r.capacity - logical%r.capacity
	if n < room {
		return n
	}
	return room
}

// readData fills p with the bytes at logical, wrapping around the end of the
// data region. len(p) must not exceed the capacity.
func (r *Ring) readData(p []byte, logical uint64) error {
	first := r.firstRun(logical, uint64(len(p)))
	if err := r.region.readAt(p[:first], r.physical(logical)); err != nil {
		return err
	}
	if first < uint64(len(p)) {
		return r.region.readAt(p[first:], HeaderSize)
	}
	return nil
}

// writeData is the write counterpart of readData.
func (r *Ring) writeData(p []byte, logical uint64) error {
	first := r.firstRun(logical, uint64(len(p)))
	if err := r.region.writeAt(p[:first], r.physical(logical)); err != nil {
		return err
	}
	if first < uint64(len(p)) {
		return r.region.writeAt(p[first:], HeaderSize)
	}
	return nil
}

// frameAt decodes the length prefix of the record starting at off. limit is
// the logical end of live data; a record running past it is malformed.
func (r *Ring) frameAt(off, limit uint64) (length uint64, prefix int, err error) {
	if off > limit {
		return 0, 0, fmt.Errorf("%w: offset %d is past end of data %d", ErrInvalidFraming, off, limit)
	}
	avail := limit - off
	var buf [MaxVarintLen]byte
	n := uint64(len(buf))
	if avail < n {
		n = avail
	}
	if err := r.readData(buf[:n], off); err != nil {
		return 0, 0, err
	}
	length, prefix, err = DecodeVarint(buf[:n])
	if err != nil {
		return 0, 0, fmt.Errorf("%w at offset %d", err, off)
	}
	if length > avail-uint64(prefix) {
		return 0, 0, fmt.Errorf("%w: record of %d bytes at offset %d runs past end of data %d", ErrInvalidFraming, length, off, limit)
	}
	return length, prefix, nil
}
