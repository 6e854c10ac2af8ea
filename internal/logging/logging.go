// Package logging builds the logr logger shared by the CLI and the server.
package logging

import (
	"io"
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a logger writing to w. Debug enables V(1) messages.
func New(w io.Writer, debug bool) logr.Logger {
	if debug {
		stdr.SetVerbosity(1)
	} else {
		stdr.SetVerbosity(0)
	}
	return stdr.NewWithOptions(log.New(w, "tasker: ", log.LstdFlags), stdr.Options{LogCaller: stdr.None})
}
