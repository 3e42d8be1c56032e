package process

import "os/exec"

// Detach starts cmd in its own process group, as Spawn does for the backend.
func Detach(cmd *exec.Cmd) { configureSysProcAttr(cmd) }

// KillGroup kills the process group led by pid.
func KillGroup(pid int) error { return kill(pid) }
