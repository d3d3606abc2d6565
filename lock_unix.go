//go:build unix

package fmmap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var flockHow = [...]int{
	lockExclusive:    unix.LOCK_EX,
	lockShared:       unix.LOCK_SH,
	lockTryExclusive: unix.LOCK_EX | unix.LOCK_NB,
	lockTryShared:    unix.LOCK_SH | unix.LOCK_NB,
	lockUnlock:       unix.LOCK_UN,
}

func lockFile(fd uintptr, op lockOp) error {
	err := flockRetryEINTR(int(fd), flockHow[op])
	if errors.Is(err, unix.EWOULDBLOCK) {
		return ErrWouldBlock
	}
	if err != nil {
		return newError(KindIO, "", "flock", err)
	}
	return nil
}

// flockRetryEINTR retries flock when a signal interrupts a blocking wait.
func flockRetryEINTR(fd, how int) error {
	const maxEINTRRetries = 10000

	for range maxEINTRRetries {
		err := unix.Flock(fd, how)
		if err == nil || !errors.Is(err, unix.EINTR) {
			return err
		}
	}
	return fmt.Errorf("flock: interrupted %d times: %w", maxEINTRRetries, unix.EINTR)
}
