package ringfile

import (
	"runtime"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Flush memaksa data dan header tersimpan ke disk. Pada mode read tidak ada
// yang perlu ditulis.
func (r *Ring) Flush() error {
	if r.closed {
		return ErrClosed
	}
	if !r.mode.writable() {
		return nil
	}
	if err := r.region.sync(); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

// Close menyimpan header yang belum di-sync lalu melepas file. Close kedua
// kalinya tidak melakukan apa-apa.
func (r *Ring) Close() error {
	if r.closed {
		return nil
	}
	var err error
	if r.dirty {
		err = r.region.sync()
	}
	err = multierr.Append(err, r.release())
	r.log.Info("closed ring", zap.Uint64("head", r.head), zap.Uint64("tail", r.tail), zap.Error(err))
	return err
}

// release menutup mapping dan file tepat satu kali.
func (r *Ring) release() error {
	if r.closed {
		return nil
	}
	r.closed = true
	runtime.SetFinalizer(r, nil)
	return r.region.close()
}

func (r *Ring) finalize() {
	r.release()
}
