// Package notifications delivers alert messages to the user.
package notifications

import "log/slog"

// Alert severity levels understood by every notifier.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
	LevelSuccess = "success"
)

// Notifier defines the interface for notification services
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error
}

// NoopNotifier drops messages; it is the default when no channel is
// configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier returns a notifier that only logs at debug level.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) SendAlert(level, message string) error {
	n.logger.Debug("notification dropped, no channel configured", "level", level, "message", message)
	return nil
}
