package process

import (
	"io"
	"os"
	"sync"
	"time"
)

// killGrace bounds how long Stop waits for the monitor after SIGKILL.
const killGrace = 200 * time.Millisecond

// Backend is a spawned backend process. A monitor goroutine reaps the child
// and records its exit; nothing else waits on it.
type Backend struct {
	spec Spec
	pid  int

	mu        sync.Mutex
	status    Status
	outCloser io.WriteCloser
	errCloser io.WriteCloser
	done      chan struct{}
}

// Spawn starts the backend described by spec. Streams without a log file
// go to spec.Stdout/spec.Stderr, defaulting to the launcher's own.
func Spawn(spec Spec) (*Backend, error) {
	cmd := spec.BuildCommand()
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	configureSysProcAttr(cmd)

	b := &Backend{spec: spec, done: make(chan struct{})}
	if spec.Log.Enabled() {
		outW, errW, err := spec.Log.ProcessWriters(spec.Name)
		if err != nil {
			return nil, err
		}
		b.outCloser, b.errCloser = outW, errW
	}
	cmd.Stdout = pickWriter(b.outCloser, spec.Stdout, os.Stdout)
	cmd.Stderr = pickWriter(b.errCloser, spec.Stderr, os.Stderr)

	if err := cmd.Start(); err != nil {
		b.closeWriters()
		return nil, err
	}
	b.pid = cmd.Process.Pid
	b.status = Status{
		Name:      spec.Name,
		PID:       b.pid,
		Running:   true,
		StartedAt: time.Now(),
	}
	go func() {
		err := cmd.Wait()
		b.markExited(err)
		b.closeWriters()
		close(b.done)
	}()
	return b, nil
}

func pickWriter(file io.WriteCloser, custom io.Writer, def io.Writer) io.Writer {
	if file != nil {
		return file
	}
	if custom != nil {
		return custom
	}
	return def
}

// PID returns the OS process id.
func (b *Backend) PID() int { return b.pid }

// Done is closed once the process has exited and been reaped.
func (b *Backend) Done() <-chan struct{} { return b.done }

// Snapshot returns a copy of the current status.
func (b *Backend) Snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Backend) markExited(err error) {
	b.mu.Lock()
	b.status.Running = false
	b.status.ExitedAt = time.Now()
	if err != nil {
		b.status.ExitErr = err.Error()
	}
	b.mu.Unlock()
}

func (b *Backend) closeWriters() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.outCloser != nil {
		_ = b.outCloser.Close()
		b.outCloser = nil
	}
	if b.errCloser != nil {
		_ = b.errCloser.Close()
		b.errCloser = nil
	}
}

// Stop asks the backend's process group to terminate and escalates to a
// kill after wait. It returns once the process is reaped or the kill grace
// period has passed.
func (b *Backend) Stop(wait time.Duration) error {
	select {
	case <-b.done:
		return nil
	default:
	}
	if err := terminate(b.pid); err != nil {
		return err
	}
	select {
	case <-b.done:
		return nil
	case <-time.After(wait):
	}
	_ = kill(b.pid)
	select {
	case <-b.done:
	case <-time.After(killGrace):
		// best-effort
	}
	return nil
}
