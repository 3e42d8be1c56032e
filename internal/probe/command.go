package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/loykin/airlaunch/internal/process"
)

// Command runs a command that should exit 0 once the backend is ready. A
// run longer than Timeout is killed together with its children and counts
// as a failed check.
type Command struct {
	Command string
	Timeout time.Duration
}

func (p Command) Check(ctx context.Context) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	spec := process.Spec{Command: p.Command}
	cmd := spec.BuildCommand()
	process.Detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case err := <-done:
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return fmt.Errorf("%s exited %d", p.Command, ee.ExitCode())
		}
		return err
	case <-t.C:
		_ = process.KillGroup(cmd.Process.Pid)
		<-done
		return fmt.Errorf("%s timed out after %s", p.Command, timeout)
	case <-ctx.Done():
		_ = process.KillGroup(cmd.Process.Pid)
		<-done
		return ctx.Err()
	}
}

func (p Command) Describe() string { return "cmd:" + p.Command }
