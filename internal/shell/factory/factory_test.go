package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/airlaunch/internal/shell"
)

func TestNew(t *testing.T) {
	for _, kind := range []string{"gui", "tui", "headless", " TUI "} {
		sh, err := New(kind, shell.Options{})
		require.NoError(t, err, kind)
		assert.NotNil(t, sh)
	}
	sh, err := New("", shell.Options{})
	require.NoError(t, err)
	assert.Equal(t, "gui", sh.Kind())

	_, err = New("web", shell.Options{})
	assert.Error(t, err)
}
