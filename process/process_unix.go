//go:build unix

package process

import (
	"golang.org/x/sys/unix"
)

// Alive reports whether a process with the given pid exists. Signal 0
// performs the permission and existence checks without delivering
// anything.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// Terminate asks the process to exit with SIGTERM. ssh-agent handles it
// by removing its socket before exiting.
func Terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}
