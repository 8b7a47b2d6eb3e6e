// Package logutil provides logging utilities.
//
// All loggers returned by GetLogger share one output, which is discarded until
// SetOutput or SetOutputFile is called. This allows packages to keep
// package-level loggers while the program decides where (or whether) logs go.
package logutil

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	out     = io.Discard
	outFile *os.File
	// Must be held when accessing out, outFile, or loggers.
	mu      sync.Mutex
	loggers []*log.Logger
)

// GetLogger gets a logger with the given prefix.
func GetLogger(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	logger := log.New(out, prefix, log.LstdFlags)
	loggers = append(loggers, logger)
	return logger
}

// SetOutput redirects the output of all loggers obtained with GetLogger to
// the new io.Writer. If the old output was a file opened by SetOutputFile, it
// is closed.
func SetOutput(newout io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeOutFile()
	out = newout
	outFile = nil
	setOutput()
}

// SetOutputFile redirects the output of all loggers obtained with GetLogger
// to the named file. If the old output was a file opened by SetOutputFile, it
// is closed. The new file is truncated. SetOutputFile("") is equivalent to
// SetOutput(io.Discard).
func SetOutputFile(fname string) error {
	if fname == "" {
		SetOutput(io.Discard)
		return nil
	}
	file, err := os.OpenFile(fname, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	closeOutFile()
	out = file
	outFile = file
	setOutput()
	return nil
}

func closeOutFile() {
	if outFile != nil {
		outFile.Close()
	}
}

func setOutput() {
	for _, logger := range loggers {
		logger.SetOutput(out)
	}
}
