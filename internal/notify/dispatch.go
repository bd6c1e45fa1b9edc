package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AntoineGS/tidyfiles/internal/catalog"
)

// ErrNoFiles is returned when a download is dispatched without files.
var ErrNoFiles = errors.New("no files to download")

// HistoryRecorder persists download requests.
type HistoryRecorder interface {
	RecordDownload(ctx context.Context, requestID string, at time.Time, files []catalog.File) (int64, error)
}

// Dispatcher performs the download action: it assigns a request id,
// records the request and notifies the user.
type Dispatcher struct {
	Notifier  Notifier
	History   HistoryRecorder
	Formatter *Formatter
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// NewDispatcher returns a Dispatcher with the default clock and id source.
// history may be nil.
func NewDispatcher(n Notifier, history HistoryRecorder, f *Formatter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		Notifier:  n,
		History:   history,
		Formatter: f,
		Logger:    logger,
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// Dispatch requests the download of files. A history failure is logged and
// does not prevent the confirmation.
func (d *Dispatcher) Dispatch(ctx context.Context, files []catalog.File) (Notification, error) {
	if len(files) == 0 {
		return Notification{}, ErrNoFiles
	}

	formatter := d.Formatter
	if formatter == nil {
		formatter = NewFormatter("", d.Logger)
	}

	n := Notification{
		Title:     DefaultTitle,
		RequestID: d.NewID(),
		At:        d.Now(),
		Files:     files,
	}

	msg, err := formatter.Format(MessageData{RequestID: n.RequestID, Files: files})
	if err != nil {
		return Notification{}, err
	}
	n.Message = msg

	if d.History != nil {
		if _, err := d.History.RecordDownload(ctx, n.RequestID, n.At, files); err != nil {
			d.Logger.Warn("recording download history",
				slog.String("request_id", n.RequestID),
				slog.String("error", err.Error()))
		}
	}

	d.Logger.Debug("download requested",
		slog.String("request_id", n.RequestID),
		slog.Int("files", len(files)))

	if d.Notifier != nil {
		if err := d.Notifier.Notify(ctx, n); err != nil {
			return n, fmt.Errorf("notifying download %s: %w", n.RequestID, err)
		}
	}

	return n, nil
}
