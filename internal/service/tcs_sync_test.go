package service

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"timetrack-service/internal/model"
)

// fakeActor records the call sequence and can fail at a chosen step.
type fakeActor struct {
	calls         []string
	startHeadless bool
	startDryRun   bool
	filledDate    string
	filledEntries []TCSEntry
	failOn        string
	screenshotErr error
}

func (a *fakeActor) Start(headless, dryRun bool) error {
	a.calls = append(a.calls, "start")
	a.startHeadless = headless
	a.startDryRun = dryRun
	return a.maybeFail("start")
}

func (a *fakeActor) FillEntries(date string, entries []TCSEntry) error {
	a.calls = append(a.calls, "fill")
	a.filledDate = date
	a.filledEntries = entries
	return a.maybeFail("fill")
}

func (a *fakeActor) Screenshot() (string, error) {
	a.calls = append(a.calls, "screenshot")
	if a.screenshotErr != nil {
		return "", a.screenshotErr
	}
	return "/tmp/tcs.png", nil
}

func (a *fakeActor) PreviewBeforeSave(autoConfirm bool) error {
	a.calls = append(a.calls, "preview")
	return a.maybeFail("preview")
}

func (a *fakeActor) Save() error {
	a.calls = append(a.calls, "save")
	return a.maybeFail("save")
}

func (a *fakeActor) Close() error {
	a.calls = append(a.calls, "close")
	return a.maybeFail("close")
}

func (a *fakeActor) maybeFail(step string) error {
	if a.failOn == step {
		return errors.New(step + " blew up")
	}
	return nil
}

func seedSyncStore(t *testing.T) *memStore {
	s := seedTCSStore()
	s.addEntry(model.TimeEntry{
		Date:           day(t, "2025-11-14"),
		ProjectID:      1,
		AccountGroupID: uintPtr(1),
		WorkCategoryID: 1,
		Hours:          dec("4"),
		Description:    "完成開發",
	})
	return s
}

func TestAutoFillTCSDryRun(t *testing.T) {
	s := seedSyncStore(t)
	actor := &fakeActor{}

	result, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), true, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.FilledCount != 1 || !result.DryRun {
		t.Errorf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(result.Message, "[DRY RUN]") {
		t.Errorf("dry-run message = %q", result.Message)
	}
	if !result.TotalHours.Equal(dec("4")) {
		t.Errorf("total_hours = %s, want 4", result.TotalHours)
	}
	if result.ScreenshotPath == nil || *result.ScreenshotPath != "/tmp/tcs.png" {
		t.Errorf("screenshot path = %v", result.ScreenshotPath)
	}

	wantCalls := []string{"start", "fill", "screenshot", "preview", "save", "close"}
	if !reflect.DeepEqual(actor.calls, wantCalls) {
		t.Errorf("actor calls = %v, want %v", actor.calls, wantCalls)
	}
	if !actor.startDryRun || !actor.startHeadless {
		t.Errorf("actor started with headless=%v dryRun=%v", actor.startHeadless, actor.startDryRun)
	}
	if actor.filledDate != "20251114" {
		t.Errorf("fill date = %q, want 20251114", actor.filledDate)
	}
}

func TestAutoFillTCSRealRunMessage(t *testing.T) {
	s := seedSyncStore(t)
	actor := &fakeActor{}

	result, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), false, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DryRun || strings.HasPrefix(result.Message, "[DRY RUN]") {
		t.Errorf("unexpected dry-run marker: %+v", result)
	}
	if !strings.Contains(result.Message, "1 筆") {
		t.Errorf("message must echo the filled count: %q", result.Message)
	}
}

func TestAutoFillTCSNoEntries(t *testing.T) {
	s := seedTCSStore()
	actor := &fakeActor{}

	_, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), true, zap.NewNop())
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
	if len(actor.calls) != 0 {
		t.Errorf("actor must not be touched, got calls %v", actor.calls)
	}
}

// Validation failures stop the flow before the actor is invoked.
func TestAutoFillTCSValidationStopsBeforeActor(t *testing.T) {
	s := seedTCSStore()
	s.addEntry(model.TimeEntry{
		Date:           day(t, "2025-11-14"),
		ProjectID:      1,
		WorkCategoryID: 1,
		Hours:          dec("19"),
		Description:    "超時",
	})
	actor := &fakeActor{}

	_, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), true, zap.NewNop())
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(vErr.Errors) != 2 {
		t.Errorf("expected both 18h caps to fire, got %v", vErr.Errors)
	}
	if len(actor.calls) != 0 {
		t.Errorf("actor must not be touched on invalid data, got %v", actor.calls)
	}
}

func TestAutoFillTCSReferenceErrorStopsBeforeActor(t *testing.T) {
	s := seedTCSStore()
	s.addEntry(model.TimeEntry{
		Date:           day(t, "2025-11-14"),
		ProjectID:      88,
		WorkCategoryID: 1,
		Hours:          dec("4"),
		Description:    "孤兒",
	})
	actor := &fakeActor{}

	_, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), true, zap.NewNop())
	var refErr *ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected *ReferenceError, got %v", err)
	}
	if len(actor.calls) != 0 {
		t.Errorf("actor must not be touched, got %v", actor.calls)
	}
}

func TestAutoFillTCSActorFailure(t *testing.T) {
	s := seedSyncStore(t)
	actor := &fakeActor{failOn: "fill"}

	_, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), true, zap.NewNop())
	var actorErr *ActorError
	if !errors.As(err, &actorErr) {
		t.Fatalf("expected *ActorError, got %v", err)
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		t.Error("actor failure must not be reported as a validation failure")
	}
}

// A failed screenshot is logged and ignored; the fill continues.
func TestAutoFillTCSScreenshotFailureIsNonFatal(t *testing.T) {
	s := seedSyncStore(t)
	actor := &fakeActor{screenshotErr: errors.New("no display")}

	result, err := AutoFillTCS(s, actor, true, day(t, "2025-11-14"), true, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ScreenshotPath != nil {
		t.Errorf("screenshot path must be absent, got %v", *result.ScreenshotPath)
	}
	wantCalls := []string{"start", "fill", "screenshot", "preview", "save", "close"}
	if !reflect.DeepEqual(actor.calls, wantCalls) {
		t.Errorf("actor calls = %v, want %v", actor.calls, wantCalls)
	}
}
