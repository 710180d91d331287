// Package notify carries user-facing notifications out of the desk core.
// The host decides how to render them; the default sink logs.
package notify

import "log"

// Severity of a notification.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Notification is one message for the user.
type Notification struct {
	Severity    string
	Message     string
	Description string
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to the Notifier interface.
type Func func(n Notification)

func (f Func) Notify(n Notification) {
	f(n)
}

// LogNotifier writes notifications to a log.Logger.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notification) {
	if n.Description != "" {
		l.logger.Printf("notify [%s] %s: %s", n.Severity, n.Message, n.Description)
		return
	}
	l.logger.Printf("notify [%s] %s", n.Severity, n.Message)
}

// Error builds an error notification.
func Error(message, description string) Notification {
	return Notification{Severity: SeverityError, Message: message, Description: description}
}

// Success builds a success notification.
func Success(message, description string) Notification {
	return Notification{Severity: SeveritySuccess, Message: message, Description: description}
}

// Info builds an info notification.
func Info(message, description string) Notification {
	return Notification{Severity: SeverityInfo, Message: message, Description: description}
}
