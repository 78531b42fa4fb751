// Package debuglog provides the client's structured debug logger. The TUI
// owns the terminal, so log output never goes to stdout/stderr; it goes to a
// file under the data dir, and only when RALPHX_DEBUG is set.
package debuglog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger writing to <dir>/debug.log when RALPHX_DEBUG is
// truthy, and a no-op logger otherwise.
func New(dir string) zerolog.Logger {
	v := strings.TrimSpace(os.Getenv("RALPHX_DEBUG"))
	if v == "" {
		return zerolog.Nop()
	}
	if b, err := strconv.ParseBool(v); err == nil && !b {
		return zerolog.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop()
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(f).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}
