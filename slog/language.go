package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/jobqc"
)

// Ensure LoggingClassifier implements jobqc.LanguageClassifier.
var _ jobqc.LanguageClassifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a LanguageClassifier with debug logging.
type LoggingClassifier struct {
	next   jobqc.LanguageClassifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next jobqc.LanguageClassifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// Classify delegates to the wrapped classifier and logs the result.
func (c *LoggingClassifier) Classify(text string) (lang jobqc.LanguageCode) {
	defer func(begin time.Time) {
		c.logger.Debug("language detection",
			"language", string(lang),
			"chars", len([]rune(text)),
			"duration", time.Since(begin),
		)
	}(time.Now())
	return c.next.Classify(text)
}
