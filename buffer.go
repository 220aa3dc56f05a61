package ringfile

// getFrame mengambil buffer kosong untuk satu frame (varint + payload).
// Frame yang muat di BufferPoolSize diambil dari pool, sisanya dialokasikan baru.
func (r *Ring) getFrame(size int) []byte {
	if r.bufPool != nil && size <= r.options.BufferPoolSize {
		if bp, ok := r.bufPool.Get().(*[]byte); ok {
			return (*bp)[:0]
		}
		return make([]byte, 0, r.options.BufferPoolSize)
	}
	return make([]byte, 0, size)
}

// putFrame mengembalikan buffer ke pool. Hanya buffer dengan kapasitas tepat
// BufferPoolSize yang disimpan agar pool tidak menahan frame besar.
func (r *Ring) putFrame(buf []byte) {
	if r.bufPool != nil && cap(buf) == r.options.BufferPoolSize {
		r.bufPool.Put(&buf)
	}
}
