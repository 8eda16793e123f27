// Package feedback carries user-facing outcomes out of the storefront core.
//
// The core never renders anything. It emits notification events (rendered as
// toasts by the client) and navigation intents (resolved to routes by the
// client) through the Notifier and Navigator interfaces.
package feedback

import (
	"sync"

	"go.uber.org/zap"
)

// Severity classifies a notification event.
type Severity string

const (
	SeverityInfo        Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Event is a single user-visible notification.
type Event struct {
	Title       string
	Description string
	Severity    Severity
}

// Info returns an informational event.
func Info(title, description string) Event {
	return Event{Title: title, Description: description, Severity: SeverityInfo}
}

// Destructive returns an event describing a failure the user must act on.
func Destructive(title, description string) Event {
	return Event{Title: title, Description: description, Severity: SeverityDestructive}
}

// Intent is a navigation outcome requested by the core.
type Intent string

const (
	IntentHome              Intent = "home"
	IntentProducts          Intent = "products"
	IntentCart              Intent = "cart"
	IntentOrderConfirmation Intent = "order-confirmation"
)

// Notifier receives notification events.
type Notifier interface {
	Notify(e Event)
}

// Navigator receives navigation intents.
type Navigator interface {
	Navigate(i Intent)
}

// Nop discards everything it receives.
type Nop struct{}

func (Nop) Notify(Event) {}

func (Nop) Navigate(Intent) {}

// Buffer queues events and the latest intent until drained. It is safe for
// concurrent use.
type Buffer struct {
	mu     sync.Mutex
	events []Event
	intent Intent
}

// Notify appends e to the buffer.
func (b *Buffer) Notify(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// Navigate records i, replacing any earlier intent.
func (b *Buffer) Navigate(i Intent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.intent = i
}

// Drain returns and clears the buffered events and intent.
func (b *Buffer) Drain() ([]Event, Intent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	events, intent := b.events, b.intent
	b.events, b.intent = nil, ""
	return events, intent
}

// Logger is a Notifier and Navigator that writes to a zap logger.
type Logger struct {
	lg *zap.Logger
}

// NewLogger returns a Logger writing to lg.
func NewLogger(lg *zap.Logger) *Logger {
	return &Logger{lg: lg}
}

func (l *Logger) Notify(e Event) {
	l.lg.Debug("Notification",
		zap.String("title", e.Title),
		zap.String("description", e.Description),
		zap.String("severity", string(e.Severity)),
	)
}

func (l *Logger) Navigate(i Intent) {
	l.lg.Debug("Navigation", zap.String("intent", string(i)))
}

// Tee fans out to several sinks.
type Tee []Sink

func (t Tee) Notify(e Event) {
	for _, s := range t {
		s.Notify(e)
	}
}

func (t Tee) Navigate(i Intent) {
	for _, s := range t {
		s.Navigate(i)
	}
}

// Sink is both a Notifier and a Navigator.
type Sink interface {
	Notifier
	Navigator
}
