package logger

import (
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It discards output until Init is called.
var Log = newDiscard()

// Session identifies the current interactive session in every log entry.
var Session = uuid.NewString()

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Init configures the structured logger to write text entries to out.
func Init(level string, out io.Writer) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
	Log.SetOutput(out)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		DisableQuote:     false,
		QuoteEmptyFields: true,
	})
}

// SetJSONFormatter switches to JSON entries, used when the log file is shipped elsewhere.
func SetJSONFormatter() {
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// WithOp returns an entry tagged with the session id and the operation name.
func WithOp(op string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"session": Session,
		"op":      op,
	})
}
