package factory

import (
	"fmt"
	"strings"

	"github.com/loykin/airlaunch/internal/shell"
	"github.com/loykin/airlaunch/internal/shell/gui"
	"github.com/loykin/airlaunch/internal/shell/headless"
	"github.com/loykin/airlaunch/internal/shell/tui"
)

// New returns the shell registered under kind: gui, tui or headless.
func New(kind string, opts shell.Options) (shell.Shell, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case gui.Kind, "":
		return gui.New(opts), nil
	case tui.Kind:
		return tui.New(opts), nil
	case headless.Kind:
		return headless.New(opts), nil
	}
	return nil, fmt.Errorf("unknown shell kind %q", kind)
}
