package command

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// lockFile takes a flock on path, shared or exclusive, blocking until it is
// granted. The returned function releases it.
func lockFile(path string, exclusive bool) (func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	for {
		err = unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lock: %w", err)
	}
	return func() error {
		return multierr.Append(unix.Flock(int(f.Fd()), unix.LOCK_UN), f.Close())
	}, nil
}
