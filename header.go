package ringfile

import (
	"encoding/binary"
	"fmt"
)

// header layout: 32 bytes (little-endian)
// 0..3   : magic "RING"
// 4..7   : uint32 version
// 8..15  : uint64 capacity (bytes in the data region)
// 16..23 : uint64 head (logical offset of the oldest live byte)
// 24..31 : uint64 tail (logical offset one past the newest byte)
//
// The data region follows immediately. head and tail only grow; the physical
// position of a logical offset is offset % capacity.

const (
	// HeaderSize is the number of bytes in front of the data region.
	HeaderSize = 32

	headerMagic          = "RING"
	headerVersion uint32 = 1
)

type header struct {
	Capacity uint64
	Head     uint64
	Tail     uint64
}

func (h header) used() uint64 { return h.Tail - h.Head }

func encodeHeader(buf []byte, h header) {
	copy(buf[0:4], headerMagic)
	binary.LittleEndian.PutUint32(buf[4:8], headerVersion)
	binary.LittleEndian.PutUint64(buf[8:16], h.Capacity)
	binary.LittleEndian.PutUint64(buf[16:24], h.Head)
	binary.LittleEndian.PutUint64(buf[24:32], h.Tail)
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < HeaderSize {
		return header{}, fmt.Errorf("%w: header too small (%d bytes)", ErrInvalidFormat, len(buf))
	}
	if string(buf[0:4]) != headerMagic {
		return header{}, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, buf[0:4])
	}
	if v := binary.LittleEndian.Uint32(buf[4:8]); v != headerVersion {
		return header{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, v)
	}
	h := header{
		Capacity: binary.LittleEndian.Uint64(buf[8:16]),
		Head:     binary.LittleEndian.Uint64(buf[16:24]),
		Tail:     binary.LittleEndian.Uint64(buf[24:32]),
	}
	if h.Capacity == 0 {
		return header{}, fmt.Errorf("%w: zero capacity", ErrInvalidFormat)
	}
	if h.Tail < h.Head || h.used() > h.Capacity {
		return header{}, fmt.Errorf("%w: head %d tail %d outside capacity %d", ErrInvalidFormat, h.Head, h.Tail, h.Capacity)
	}
	return h, nil
}

// loadHeader reads and validates the header from the backing file.
func (r *Ring) loadHeader() (header, error) {
	var buf [HeaderSize]byte
	if err := r.region.readAt(buf[:], 0); err != nil {
		return header{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	h, err := decodeHeader(buf[:])
	if err != nil {
		return header{}, err
	}
	if size := r.region.size(); size < HeaderSize+h.Capacity {
		return header{}, fmt.Errorf("%w: file is %d bytes, capacity %d needs %d", ErrInvalidFormat, size, h.Capacity, HeaderSize+h.Capacity)
	}
	return h, nil
}

// saveHeader writes head and tail to disk. It does not sync.
func (r *Ring) saveHeader(head, tail uint64) error {
	var buf [HeaderSize]byte
	encodeHeader(buf[:], header{Capacity: r.capacity, Head: head, Tail: tail})
	return r.region.writeAt(buf[:], 0)
}

// Head returns the logical offset of the oldest live byte.
func (r *Ring) Head() uint64 { return r.head }

// Tail returns the logical offset one past the newest byte.
func (r *Ring) Tail() uint64 { return r.tail }

// Capacity returns the size of the data region in bytes.
func (r *Ring) Capacity() uint64 { return r.capacity }
