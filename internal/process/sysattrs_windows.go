//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// CREATE_NEW_PROCESS_GROUP keeps console Ctrl+C from reaching the backend.
const CREATE_NEW_PROCESS_GROUP = 0x00000200

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: CREATE_NEW_PROCESS_GROUP}
}

// Windows has no SIGTERM for console groups; terminate kills outright.
func terminate(pid int) error { return kill(pid) }

func kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		// already gone
		return nil
	}
	return p.Kill()
}
