package process

import (
	"io"
	"os/exec"
	"strings"

	"github.com/loykin/airlaunch/internal/logger"
)

// Spec describes the backend process the launcher brings up.
type Spec struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`  // command line; a shell is used only when needed
	WorkDir string            `json:"work_dir"` // optional working directory
	Env     []string          `json:"env"`      // final environment; nil inherits the launcher's, empty means none
	Log     logger.FileConfig `json:"log"`      // optional stdout/stderr files
	// Stdout and Stderr receive the streams that have no log file.
	// Nil means the launcher's own stdout/stderr.
	Stdout io.Writer `json:"-"`
	Stderr io.Writer `json:"-"`
}

// BuildCommand constructs an *exec.Cmd for s.Command.
// It avoids invoking a shell when not necessary, and it also respects
// an explicit shell invocation already present in the command string
// (e.g., "sh -c 'go run .'"), avoiding double-wrapping with another shell.
func (s *Spec) BuildCommand() *exec.Cmd {
	cmdStr := strings.TrimSpace(s.Command)
	if cmdStr == "" {
		return getTrueCommand()
	}
	if script, ok := parseExplicitShell(cmdStr); ok {
		return getShellCommand(script)
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		return getShellCommand(cmdStr)
	}
	parts := strings.Fields(cmdStr)
	// #nosec G204
	return exec.Command(parts[0], parts[1:]...)
}

// parseExplicitShell detects "sh -c <ARG>" style prefixes and returns ARG
// with one pair of surrounding quotes stripped.
func parseExplicitShell(cmdStr string) (string, bool) {
	trim := strings.TrimLeft(cmdStr, " \t")
	for _, p := range []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "} {
		if !strings.HasPrefix(trim, p) {
			continue
		}
		after := trim[len(p):]
		if n := len(after); n >= 2 {
			if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
				after = after[1 : n-1]
			}
		}
		return after, true
	}
	return "", false
}
