package testutil

import (
	"io"

	"github.com/dtroode/taskmanager-server/internal/logger"
)

// MakeNoopLogger returns a Logger that discards everything.
func MakeNoopLogger() *logger.Logger {
	return logger.NewWithFormat(0, "text", io.Discard)
}
