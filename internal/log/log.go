package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// SetVerbose switches the minimum level to debug.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects all log output, e.g. to a per-run log file.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

func Debug(msg string, kv ...any) {
	logger.WithFields(fields(kv...)).Debug(msg)
}

func Info(msg string, kv ...any) {
	logger.WithFields(fields(kv...)).Info(msg)
}

func Warn(msg string, kv ...any) {
	logger.WithFields(fields(kv...)).Warn(msg)
}

func Error(msg string, err error, kv ...any) {
	logger.WithFields(fields(kv...)).WithError(err).Error(msg)
}

// fields converts alternating key/value arguments into logrus fields.
// Non-string keys and a trailing odd value are ignored.
func fields(kv ...any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}
