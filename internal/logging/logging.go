// Package logging configures logrus for the board. The terminal belongs to
// the UI, so entries go to a file as JSON.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Formatter is the JSON layout shared by every entry.
func Formatter() log.Formatter {
	return &log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	}
}

// New returns a logger writing to path at level. The returned closer
// releases the file.
func New(path, level string) (*log.Logger, io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse log level")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "create log dir")
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}

	logger := log.New()
	logger.SetOutput(f)
	logger.SetFormatter(Formatter())
	logger.SetLevel(lvl)

	// Libraries logging through the standard logger land in the same file.
	log.SetOutput(f)
	log.SetFormatter(Formatter())
	log.SetLevel(lvl)
	return logger, f, nil
}
