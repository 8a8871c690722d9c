package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tobewise-cli/internal/model"
	"tobewise-cli/internal/notify"
	"tobewise-cli/internal/query"
	"tobewise-cli/internal/settings"
)

// maxSlots bounds how many quotation notifications one scheduling run
// registers; slot maxSlots+1 is always the terminal reopen prompt.
const maxSlots = 63

const reopenTitle = "ToBeWise"
const reopenBody = "Open ToBeWise to queue up more quotations."

// Scheduler recomputes the pending notification batch from current
// settings. Re-entrant: every settings change triggers a full
// recomputation, there is no incremental diffing.
type Scheduler struct {
	store    settings.Store
	engine   *query.Engine
	notifier notify.Notifier

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

func New(store settings.Store, engine *query.Engine, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		store:    store,
		engine:   engine,
		notifier: notifier,
		now:      time.Now,
	}
}

// Schedule registers one notification per candidate instant inside
// today's time window, then the terminal reopen prompt. Overrides, when
// non-empty, replace the stored notification selection. Per-instant
// draw or registration failures are logged and skipped; the run itself
// only fails when nothing can proceed at all.
func (s *Scheduler) Schedule(ctx context.Context, queryOverride string, filterOverride model.FilterKind) error {
	cfg := settings.Load(s.store)

	if !cfg.AllowNotifications {
		slog.Info("notifications disabled, cancelling pending batch")
		return s.notifier.CancelAll(ctx)
	}

	token, filter := s.selection(queryOverride, filterOverride)

	now := s.now()
	windowStart := windowInstant(now, cfg.StartTime24h)
	windowEnd := windowInstant(now, cfg.EndTime24h)
	spacing := time.Duration(cfg.Spacing) * time.Minute

	// An inverted window yields zero candidates for today. Accepted,
	// not an error: the terminal prompt still fires.
	var scheduled, failed int
	for i := 1; i <= maxSlots; i++ {
		fireAt := now.Add(time.Duration(i) * spacing)
		if fireAt.Before(windowStart) || fireAt.After(windowEnd) {
			continue
		}

		if err := s.scheduleOne(ctx, fireAt, token, filter); err != nil {
			slog.Warn("failed to schedule notification slot", "slot", i, "fireAt", fireAt, "error", err)
			failed++
			continue
		}
		scheduled++
	}

	terminalAt := now.Add(time.Duration(maxSlots+1) * spacing)
	if err := s.notifier.ScheduleAt(ctx, terminalAt, reopenTitle, reopenBody, nil); err != nil {
		return fmt.Errorf("failed to schedule terminal notification: %w", err)
	}

	slog.Info("notification batch scheduled",
		"scheduled", scheduled, "failed", failed, "terminalAt", terminalAt.Format(time.RFC3339),
		"query", token, "filter", filter)
	return nil
}

func (s *Scheduler) scheduleOne(ctx context.Context, fireAt time.Time, token string, filter model.FilterKind) error {
	quotes, err := s.engine.Shuffled(token, filter)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		return fmt.Errorf("no quotations match %q/%q", token, filter)
	}

	quote := quotes[0]
	payload, err := notify.EncodePayload(quote)
	if err != nil {
		return err
	}
	return s.notifier.ScheduleAt(ctx, fireAt, quote.Author, quote.QuoteText, payload)
}

// selection resolves the notification query/filter pair: explicit
// overrides win, then the stored notification pair, then the stored
// browse pair, then hard defaults.
func (s *Scheduler) selection(queryOverride string, filterOverride model.FilterKind) (string, model.FilterKind) {
	token := queryOverride
	if token == "" {
		token = storedString(s.store, model.KeyNotificationQuery)
	}
	if token == "" {
		token = storedString(s.store, model.KeyQuery)
	}
	if token == "" {
		token = model.DefaultQuery
	}

	filter := filterOverride
	if filter == "" {
		filter = model.FilterKind(storedString(s.store, model.KeyNotificationFilter))
	}
	if filter == "" {
		filter = model.FilterKind(storedString(s.store, model.KeyFilter))
	}
	if !filter.Valid() {
		filter = model.DefaultFilter
	}
	return token, filter
}

func storedString(store settings.Store, key string) string {
	var value string
	if ok, err := settings.GetJSON(store, key, &value); err != nil || !ok {
		return ""
	}
	return value
}

// windowInstant anchors an hour*100+minute encoded time-of-day onto the
// reference day.
func windowInstant(ref time.Time, hhmm int) time.Time {
	hour := hhmm / 100
	minute := hhmm % 100
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
}
