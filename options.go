package ringfile

import (
	"os"

	"go.uber.org/zap"
)

// Options menyediakan opsi konfigurasi untuk Ring.
//
//   - UseMmap:        akses file lewat memory-mapping, bukan ReadAt/WriteAt
//   - SyncWrites:     fsync data lalu header pada setiap Write
//   - BufferPoolSize: ukuran buffer frame yang di-pool (0 = nonaktif)
//   - FileMode:       permission file baru (0 = 0o644)
//   - Logger:         logger zap (nil = tidak ada log)
//
// Lihat DefaultOptions() untuk nilai bawaan.
type Options struct {
	UseMmap        bool
	SyncWrites     bool
	BufferPoolSize int
	FileMode       os.FileMode
	Logger         *zap.Logger
}

// DefaultOptions mengembalikan konfigurasi default yang digunakan Create dan Open.
func DefaultOptions() Options {
	return Options{
		UseMmap:        false,
		SyncWrites:     true,
		BufferPoolSize: 64 * 1024,
		FileMode:       0o644,
	}
}

func (o Options) fileMode() os.FileMode {
	if o.FileMode == 0 {
		return 0o644
	}
	return o.FileMode
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
