package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives the log through a rotating writer instead
	// of stderr.
	File string
	JSON bool
}

// New builds the process logger. An unknown level is an error rather than
// a silent fallback.
func New(opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = log.ParseLevel(opts.Level); err != nil {
			return nil, err
		}
	}

	lg := log.New()
	lg.SetLevel(level)
	if opts.JSON {
		lg.SetFormatter(&log.JSONFormatter{})
	} else {
		lg.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	var w io.Writer = os.Stderr
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
		w = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   true,
		}
	}
	lg.SetOutput(w)

	return lg, nil
}
