// Package logging configures the process-wide go-logging backend. Packages
// obtain their own named logger with logging.MustGetLogger and never write to
// stdout directly.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	gologging "github.com/op/go-logging"
)

const (
	plainFormat   = `%{time:2006-01-02 15:04:05} %{level:.5s} %{module:-9s} %{message}`
	coloredFormat = `%{color}%{time:2006-01-02 15:04:05} %{level:.5s}%{color:reset} %{module:-9s} %{message}`
)

// Logger is re-exported so callers import a single logging package.
type Logger = gologging.Logger

func MustGetLogger(module string) *Logger {
	return gologging.MustGetLogger(module)
}

// Init parses level (DEBUG, INFO, WARNING, ERROR, CRITICAL) and installs a
// leveled backend writing to w. Color is only used when w is a terminal.
func Init(level string, w io.Writer) error {
	lvl, err := gologging.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	if err != nil {
		return err
	}
	format := gologging.MustStringFormatter(plainFormat)
	if isTerminal(w) {
		format = gologging.MustStringFormatter(coloredFormat)
	}
	backend := gologging.NewBackendFormatter(gologging.NewLogBackend(w, "", 0), format)
	leveled := gologging.AddModuleLevel(backend)
	leveled.SetLevel(lvl, "")
	gologging.SetBackend(leveled)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
