// Package logging builds the zap loggers used by the command-line tool.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New returns a development console logger when debug is set and a
// production JSON logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	return logger, errors.Wrap(err, "create logger")
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
