//go:build unix

package auth

import "os"

// isSocketFile reports whether the stat result describes a Unix domain
// socket. A regular file at the socket path means a half-torn-down agent.
func isSocketFile(info os.FileInfo) bool {
	return info.Mode().Type() == os.ModeSocket
}
