// Package notify surfaces the confirmation of a download request.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
)

// Notification is the confirmation shown after a download request.
type Notification struct {
	At        time.Time
	Title     string
	Message   string
	RequestID string
	Files     []catalog.File
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Recorder keeps every notification it receives. It is safe for concurrent use.
type Recorder struct {
	notifications []Notification
	mu            sync.Mutex
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, n)

	return nil
}

// Notifications returns a copy of the received notifications in order.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.notifications)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.notifications) == 0 {
		return Notification{}, false
	}

	return r.notifications[len(r.notifications)-1], true
}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, n.Title,
		slog.String("request_id", n.RequestID),
		slog.Int("files", len(n.Files)),
		slog.String("message", n.Message),
	)

	return nil
}

// Writer prints notifications as plain text. It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify implements Notifier.
func (w *Writer) Notify(_ context.Context, n Notification) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.w, "%s [%s]\n%s\n", n.Title, n.RequestID, strings.TrimRight(n.Message, "\n")); err != nil {
		return fmt.Errorf("writing notification: %w", err)
	}

	return nil
}

// Multi fans a notification out to every notifier and returns the first error.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var first error

	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && first == nil {
			first = err
		}
	}

	return first
}
