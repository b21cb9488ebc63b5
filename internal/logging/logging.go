package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger on w. Verbose lowers the level from warn to
// debug.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}
