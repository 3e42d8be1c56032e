package env

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/subosito/gotenv"
)

// Env composes the environment handed to the backend process.
// Layers apply in order: OS environment (optional), .env files, explicit
// KEY=VALUE entries, then per-call overrides passed to Merge.
type Env struct {
	useOS bool
	vars  map[string]string
}

func New(useOS bool) *Env {
	return &Env{useOS: useOS, vars: make(map[string]string)}
}

// Set sets a single variable.
func (e *Env) Set(k, v string) {
	if k == "" {
		return
	}
	e.vars[k] = v
}

// Apply sets each KEY=VALUE pair. Entries without '=' or with an empty key are skipped.
func (e *Env) Apply(kvs []string) {
	for _, kv := range kvs {
		if k, v, ok := split(kv); ok {
			e.Set(k, v)
		}
	}
}

// LoadFile reads a dotenv file and layers its variables over the ones set
// so far. Unquoted and double-quoted values may reference ${VAR} of the same
// file; the file's own expansion happens at parse time.
func (e *Env) LoadFile(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open env file: %w", err)
	}
	defer func() { _ = f.Close() }()

	vars, err := gotenv.StrictParse(f)
	if err != nil {
		return fmt.Errorf("parse env file %s: %w", path, err)
	}
	for k, v := range vars {
		e.Set(k, v)
	}
	return nil
}

// Merge returns the composed environment as sorted KEY=VALUE entries, with
// ${VAR} references expanded against the composed map (single pass).
func (e *Env) Merge(overrides []string) []string {
	m := make(map[string]string, len(e.vars))
	if e.useOS {
		for _, kv := range os.Environ() {
			if k, v, ok := split(kv); ok {
				m[k] = v
			}
		}
	}
	for k, v := range e.vars {
		m[k] = v
	}
	for _, kv := range overrides {
		if k, v, ok := split(kv); ok {
			m[k] = v
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+expand(v, m))
	}
	sort.Strings(out)
	return out
}

func split(kv string) (string, string, bool) {
	i := strings.IndexByte(kv, '=')
	if i <= 0 {
		return "", "", false
	}
	return kv[:i], kv[i+1:], true
}

// expand replaces ${NAME} with its value in m; unknown names expand to "".
func expand(s string, m map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		j := strings.IndexByte(s[i+2:], '}')
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(m[s[i+2:i+2+j]])
		s = s[i+2+j+1:]
	}
}
