package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tobewise-cli/internal/db"
	"tobewise-cli/internal/model"
	"tobewise-cli/internal/notify"
	"tobewise-cli/internal/query"
	"tobewise-cli/internal/settings"
)

type scheduledCall struct {
	fireAt  time.Time
	title   string
	body    string
	payload []byte
}

// fakeNotifier records every registration so tests can inspect the
// planned batch.
type fakeNotifier struct {
	calls     []scheduledCall
	cancelled int
}

func (f *fakeNotifier) ScheduleAt(_ context.Context, fireAt time.Time, title, body string, payload []byte) error {
	f.calls = append(f.calls, scheduledCall{fireAt: fireAt, title: title, body: body, payload: payload})
	return nil
}

func (f *fakeNotifier) CancelAll(context.Context) error {
	f.cancelled++
	return nil
}

func setupScheduler(t *testing.T, s model.Settings) (*Scheduler, *fakeNotifier, settings.Store) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Init(); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.SaveQuote(model.Quotation{
		QuoteText: "Keep going.", Author: "Winston Churchill", Subjects: "Top 100, Persistence",
	}); err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}

	store := settings.NewSQLiteStore(database)
	if err := settings.Save(store, s); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	notifier := &fakeNotifier{}
	sched := New(store, query.New(database, store), notifier)
	return sched, notifier, store
}

func fixedNow(t *testing.T, value string) func() time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return func() time.Time { return parsed }
}

func TestScheduleFillsWindow(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.StartTime24h = 900
	cfg.EndTime24h = 1100
	cfg.Spacing = 30

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T09:00:00Z")

	if err := sched.Schedule(context.Background(), "", ""); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// Candidates are now+30m, now+60m, ... Only 09:30, 10:00, 10:30 and
	// 11:00 land inside the window, plus the terminal prompt.
	if len(notifier.calls) != 5 {
		t.Fatalf("expected 4 quote slots + terminal, got %d calls", len(notifier.calls))
	}

	for i, call := range notifier.calls[:4] {
		want := sched.now().Add(time.Duration(i+1) * 30 * time.Minute)
		if !call.fireAt.Equal(want) {
			t.Errorf("slot %d fires at %v, want %v", i+1, call.fireAt, want)
		}
		if call.title != "Winston Churchill" {
			t.Errorf("slot %d title = %q, want the author", i+1, call.title)
		}
		if call.body != "Keep going." {
			t.Errorf("slot %d body = %q, want the quote text", i+1, call.body)
		}

		quote, err := notify.DecodePayload(call.payload)
		if err != nil {
			t.Fatalf("slot %d payload invalid: %v", i+1, err)
		}
		if quote.QuoteText != "Keep going." {
			t.Errorf("slot %d payload text = %q", i+1, quote.QuoteText)
		}
	}
}

func TestScheduleTerminalPrompt(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.StartTime24h = 900
	cfg.EndTime24h = 905
	cfg.Spacing = 10

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T09:00:00Z")

	if err := sched.Schedule(context.Background(), "", ""); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// Every candidate lands after the 5-minute window; only the
	// terminal prompt is registered, at now + 64 slots of spacing.
	if len(notifier.calls) != 1 {
		t.Fatalf("expected only the terminal prompt, got %d calls", len(notifier.calls))
	}

	terminal := notifier.calls[0]
	wantAt := sched.now().Add(64 * 10 * time.Minute)
	if !terminal.fireAt.Equal(wantAt) {
		t.Errorf("terminal fires at %v, want %v", terminal.fireAt, wantAt)
	}
	if terminal.title != "ToBeWise" {
		t.Errorf("terminal title = %q", terminal.title)
	}
	if terminal.body != "Open ToBeWise to queue up more quotations." {
		t.Errorf("terminal body = %q", terminal.body)
	}
	if terminal.payload != nil {
		t.Errorf("terminal prompt carries no quotation payload")
	}
}

func TestScheduleCapsAtSlotLimit(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.StartTime24h = 0
	cfg.EndTime24h = 2359
	cfg.Spacing = 1

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T10:00:00Z")

	if err := sched.Schedule(context.Background(), "", ""); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// All 63 one-minute candidates fit, then the terminal prompt.
	if len(notifier.calls) != 64 {
		t.Fatalf("expected 63 quote slots + terminal, got %d calls", len(notifier.calls))
	}
	last := notifier.calls[63]
	if last.title != "ToBeWise" {
		t.Errorf("last call should be the terminal prompt, got %q", last.title)
	}
}

func TestScheduleDisabledCancelsBatch(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.AllowNotifications = false

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T10:00:00Z")

	if err := sched.Schedule(context.Background(), "", ""); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if notifier.cancelled != 1 {
		t.Errorf("expected one CancelAll, got %d", notifier.cancelled)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("disabled notifications must register nothing, got %d calls", len(notifier.calls))
	}
}

func TestScheduleInvertedWindow(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.StartTime24h = 2200
	cfg.EndTime24h = 900
	cfg.Spacing = 30

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T10:00:00Z")

	// Start after end means zero candidates today; that is accepted,
	// and the terminal prompt still goes out.
	if err := sched.Schedule(context.Background(), "", ""); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected only the terminal prompt, got %d calls", len(notifier.calls))
	}
	if notifier.calls[0].title != "ToBeWise" {
		t.Errorf("unexpected call: %+v", notifier.calls[0])
	}
}

func TestScheduleOverridesWinOverStoredSelection(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.StartTime24h = 0
	cfg.EndTime24h = 2359
	cfg.Spacing = 30
	cfg.NotificationQuery = "Nothing Matches This"
	cfg.NotificationFilter = model.FilterSubject

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T10:00:00Z")

	if err := sched.Schedule(context.Background(), "Persistence", model.FilterSubject); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	// The override matches the seeded quote, so quote slots exist even
	// though the stored selection matches nothing.
	var quoteSlots int
	for _, call := range notifier.calls {
		if call.payload != nil {
			quoteSlots++
		}
	}
	if quoteSlots == 0 {
		t.Error("override selection produced no quote slots")
	}
}

func TestScheduleEmptySelectionStillSchedulesTerminal(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.StartTime24h = 0
	cfg.EndTime24h = 2359
	cfg.Spacing = 30
	cfg.NotificationQuery = "No Such Subject"

	sched, notifier, _ := setupScheduler(t, cfg)
	sched.now = fixedNow(t, "2026-03-10T10:00:00Z")

	// Every per-slot draw fails (no matching quotes); the run still
	// succeeds and the terminal prompt is registered.
	if err := sched.Schedule(context.Background(), "", ""); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("expected only the terminal prompt, got %d calls", len(notifier.calls))
	}
	if notifier.calls[0].payload != nil {
		t.Error("terminal prompt must not carry a payload")
	}
}
