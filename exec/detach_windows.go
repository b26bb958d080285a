//go:build windows

package exec

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

func applyDetachAttrs(cmd *exec.Cmd) {
	// Detach the child from bgit's console so it survives bgit exiting.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}
