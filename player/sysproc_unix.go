//go:build !windows

package player

import (
	"errors"
	"os/exec"
	"syscall"
)

// sysProcAttr gives mpv its own process group so a terminal Ctrl+C reaches
// only pitchloop, which then closes both windows in order.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcess kills mpv together with anything it spawned.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return cmd.Process.Kill()
}
