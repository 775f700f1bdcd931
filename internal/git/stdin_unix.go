//go:build unix

package git

import (
	"os"

	"golang.org/x/sys/unix"
)

// inputReady polls f with a zero timeout.
func inputReady(f *os.File) bool {
	fds := []unix.PollFd{{Fd: int32(f.Fd()), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, 0)
		if err == unix.EINTR {
			continue
		}
		return err == nil && n == 1 && fds[0].Revents&unix.POLLIN != 0
	}
}
