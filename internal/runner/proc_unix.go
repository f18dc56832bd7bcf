//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// killTree makes cancellation reach the whole process group, so a wrapper
// script's children (dart under flutter, for example) stop with it.
func killTree(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// A negative pid signals every process in the group
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
