//go:build windows

package runner

import (
	"os/exec"
	"strconv"
)

// killTree makes cancellation reach the child's descendants. flutter.bat runs
// dart.exe, which would otherwise outlive the batch interpreter.
func killTree(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
		if err := kill.Run(); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
