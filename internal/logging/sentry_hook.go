package logging

import (
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards matching logrus entries to sentry.
type SentryHook struct {
	levels []logrus.Level
}

func NewSentryHook(levels []logrus.Level) *SentryHook {
	return &SentryHook{
		levels: levels,
	}
}

func (h *SentryHook) Levels() []logrus.Level {
	return h.levels
}

func (h *SentryHook) Fire(entry *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Message = entry.Message
	event.Timestamp = entry.Time

	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		event.Level = sentry.LevelFatal
	case logrus.ErrorLevel:
		event.Level = sentry.LevelError
	case logrus.WarnLevel:
		event.Level = sentry.LevelWarning
	default:
		event.Level = sentry.LevelInfo
	}

	for key, value := range entry.Data {
		event.Extra[key] = value
	}

	sentry.CaptureEvent(event)
	return nil
}
