package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Test binaries log everything, but only surface it when run with -v
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	if !isVerbose(os.Args[1:]) {
		logrus.SetOutput(io.Discard)
	}
}

// Test flags aren't registered yet when package inits run, so the raw
// arguments are inspected instead
func isVerbose(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "-test.v", arg == "-test.v=true":
			return true
		case strings.HasPrefix(arg, "-test.v=test2json"):
			return true
		}
	}
	return false
}

// DisableLogging discards log output until the returned func is called
func DisableLogging() (reset func()) {
	logger := logrus.StandardLogger()

	original := logger.Out
	logger.SetOutput(io.Discard)
	return func() {
		logger.SetOutput(original)
	}
}
