package viewstate

import "time"

// FilterLogEvent describes one filter evaluation attempt for logging.
type FilterLogEvent struct {
	Engine   string
	Expr     string
	Duration time.Duration
	Err      error
}

// FilterLogger records filter evaluation events.
type FilterLogger interface {
	LogEvaluation(FilterLogEvent)
}

// FilterLoggerFunc adapts a function to FilterLogger.
type FilterLoggerFunc func(FilterLogEvent)

// LogEvaluation implements FilterLogger.
func (f FilterLoggerFunc) LogEvaluation(event FilterLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopFilterLogger struct{}

func (noopFilterLogger) LogEvaluation(FilterLogEvent) {}

// WithFilterLogger attaches an evaluation logger to a Filter.
func WithFilterLogger(logger FilterLogger) FilterOption {
	return func(cfg *filterConfig) {
		if logger == nil {
			cfg.logger = noopFilterLogger{}
			return
		}
		cfg.logger = logger
	}
}
