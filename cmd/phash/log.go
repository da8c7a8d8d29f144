package main

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Levels accepted by --log-level, most to least severe.
var logLevels = []string{"error", "warn", "info", "debug", "trace"}

// Lines look like "2006-01-02 15:04:05 level=info file.go:12 fn() msg=... prefix=phash".
func newLogger(out io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level must be one of %s", strings.Join(logLevels, ", "))
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetReportCaller(true)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02 15:04:05",
		CallerPrettyfier: callerName,
	})
	return l, nil
}

// Only the last path element and the bare function name, like "scan.go:40" and "hashFiles()".
func callerName(f *runtime.Frame) (string, string) {
	fns := strings.Split(f.Function, ".")
	return fns[len(fns)-1] + "()", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}
