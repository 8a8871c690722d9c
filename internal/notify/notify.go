package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tobewise-cli/internal/model"
)

// Notifier is the OS notification subsystem contract. The core only
// schedules and cancels; delivery and the notification-opened event are
// the platform layer's business.
type Notifier interface {
	ScheduleAt(ctx context.Context, fireAt time.Time, title, body string, payload []byte) error
	CancelAll(ctx context.Context) error
}

// EncodePayload serializes a quotation for the notification payload so
// the opened-notification event can be deserialized back into the same
// record.
func EncodePayload(q model.Quotation) ([]byte, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification payload: %w", err)
	}
	return data, nil
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(payload []byte) (model.Quotation, error) {
	var q model.Quotation
	if err := json.Unmarshal(payload, &q); err != nil {
		return model.Quotation{}, fmt.Errorf("failed to decode notification payload: %w", err)
	}
	return q, nil
}

// LogNotifier stands in for the platform notification subsystem when
// running headless; it records what would have been registered.
type LogNotifier struct{}

func (LogNotifier) ScheduleAt(_ context.Context, fireAt time.Time, title, body string, _ []byte) error {
	slog.Info("notification scheduled", "fireAt", fireAt.Format(time.RFC3339), "title", title, "body", body)
	return nil
}

func (LogNotifier) CancelAll(context.Context) error {
	slog.Info("all pending notifications cancelled")
	return nil
}
