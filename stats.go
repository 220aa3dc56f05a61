package ringfile

import "sync/atomic"

// Stats menyimpan penghitung aktivitas sebuah Ring sejak dibuka.
type Stats struct {
	Appends      uint64 // record yang ditulis
	Evictions    uint64 // record lama yang dibuang agar muat
	EvictedBytes uint64 // jumlah byte (termasuk prefix) yang dibuang
	Reads        uint64 // record yang dikembalikan reader
}

// GetStats mengambil snapshot statistik tanpa lock.
func (r *Ring) GetStats() Stats {
	return Stats{
		Appends:      atomic.LoadUint64(&r.statAppends),
		Evictions:    atomic.LoadUint64(&r.statEvictions),
		EvictedBytes: atomic.LoadUint64(&r.statEvictedBytes),
		Reads:        atomic.LoadUint64(&r.statReads),
	}
}

// ResetStats mengatur ulang semua penghitung.
func (r *Ring) ResetStats() {
	atomic.StoreUint64(&r.statAppends, 0)
	atomic.StoreUint64(&r.statEvictions, 0)
	atomic.StoreUint64(&r.statEvictedBytes, 0)
	atomic.StoreUint64(&r.statReads, 0)
}

// Usage menggambarkan berapa banyak region data yang terisi record hidup.
type Usage struct {
	Capacity uint64
	Used     uint64
	Free     uint64
}

// Usage mengembalikan okupansi per Write, Open atau Reload terakhir.
func (r *Ring) Usage() Usage {
	used := r.tail - r.head
	return Usage{Capacity: r.capacity, Used: used, Free: r.capacity - used}
}
