package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger. It discards everything until InitLogger runs.
var Log = zerolog.Nop()

// InitLogger writes to stdout and, when file is set, appends to it as well.
// The returned closer releases the file.
func InitLogger(file string, level zerolog.Level) (io.Closer, error) {
	writers := []io.Writer{os.Stdout}
	var closer io.Closer = io.NopCloser(nil)

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	Log = New(zerolog.MultiLevelWriter(writers...), level)
	return closer, nil
}

// New builds a timestamped logger on w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component returns Log tagged with a component name.
func Component(name string) zerolog.Logger {
	return Log.With().Str("component", name).Logger()
}
