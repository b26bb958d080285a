//go:build !windows

package exec

import (
	"os/exec"
	"syscall"
)

// applyDetachAttrs puts the child in its own session so it is not killed
// when bgit's controlling terminal closes. This is what lets a spawned
// ssh-agent outlive the invocation that created it.
func applyDetachAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
