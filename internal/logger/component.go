package logger

// LoggingConfig is the subset of the logging configuration the logger needs.
// Declared here so the config package can depend on the logger, not the
// other way around.
type LoggingConfig interface {
	GetComponentLevel(component string) string
	IsDevelopment() bool
}

// NewComponentLoggerFromConfig builds a logger for the named component, honoring
// any per-component level override in the logging configuration. A nil config
// yields the default logger tagged with the component name.
func NewComponentLoggerFromConfig(component string, cfg LoggingConfig) *Logger {
	if cfg == nil {
		return GetDefaultLogger().WithComponent(component)
	}

	l, err := NewLogger(cfg.GetComponentLevel(component), cfg.IsDevelopment())
	if err != nil {
		// fall back rather than refusing to start over a bad level string
		return GetDefaultLogger().WithComponent(component)
	}

	return l.WithComponent(component)
}
