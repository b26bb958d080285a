//go:build !unix

package auth

import "os"

// isSocketFile is a no-op outside Unix: Windows agent endpoints are named
// pipes that never appear at the recorded path, so existence is all the
// store can check.
func isSocketFile(info os.FileInfo) bool {
	return info != nil
}
