package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/navidrop/taxi-site/internal/places"
)

type stubSubmitter struct {
	mu    sync.Mutex
	calls []Payload
	res   Result
	err   error
	block chan struct{}
}

func (s *stubSubmitter) Submit(_ context.Context, p Payload) (Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	return s.res, s.err
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(DateLayout)
}

func fillStep1(f *Form) {
	f.SetPickup("Chennai")
	f.SetDropoff("Madurai")
	f.SetPickupDate(tomorrow())
	f.SetTime(9, 0, PeriodAM)
	f.SetVehicleType("sedan")
	f.SetDistance("450")
}

func TestWizardStepGating(t *testing.T) {
	sub := &stubSubmitter{res: Result{WhatsAppURL: "https://wa.me/911", Notified: true}}
	f := NewForm(FormConfig{Submitter: sub})

	// Step 1 refuses to advance while required fields are missing.
	if f.Next() {
		t.Fatal("empty step 1 advanced")
	}
	snap := f.Snapshot()
	if snap.Step != 1 || len(snap.Errors) == 0 {
		t.Fatalf("step = %d, errors = %v; want step 1 with errors", snap.Step, snap.Errors)
	}

	fillStep1(f)
	if !f.Next() {
		t.Fatalf("valid step 1 refused: %v", f.Snapshot().Errors)
	}

	// Step 2 with an empty mobile stays put and reports the field.
	f.SetName("Ravi Kumar")
	if _, err := f.Confirm(context.Background()); err != ErrValidation {
		t.Fatalf("Confirm with empty mobile = %v, want ErrValidation", err)
	}
	snap = f.Snapshot()
	if snap.Step != 2 {
		t.Errorf("step = %d after failed confirm, want 2", snap.Step)
	}
	if snap.Errors[FieldMobile] == "" {
		t.Error("fieldErrors.mobile not populated")
	}

	f.SetMobile("9876543210")
	res, err := f.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !res.Notified {
		t.Error("result lost the submitter's outcome")
	}
	snap = f.Snapshot()
	if snap.Step != 3 || snap.Submission != SubmissionSucceeded {
		t.Errorf("after confirm: step %d, submission %s", snap.Step, snap.Submission)
	}
	if sub.callCount() != 1 {
		t.Errorf("submitter called %d times, want 1", sub.callCount())
	}

	// Book another: everything returns to initial empty state.
	if !f.Reset() {
		t.Fatal("settled wizard refused reset")
	}
	snap = f.Snapshot()
	if snap.Step != 1 || snap.Submission != SubmissionIdle {
		t.Errorf("after reset: step %d, submission %s", snap.Step, snap.Submission)
	}
	if snap.Draft != NewDraft() {
		t.Errorf("draft not reset: %+v", snap.Draft)
	}
	if len(snap.Errors) != 0 || snap.PickupSuggestions != nil || snap.Result != nil {
		t.Error("errors, suggestions, or result survived reset")
	}
}

func TestTripTypeSwitchClearsReturnDate(t *testing.T) {
	f := NewForm(FormConfig{})
	f.SetTripType(TripRoundTrip)
	f.SetPickupDate(tomorrow())
	f.SetReturnDate(tomorrow()) // equal to pickup: rejected

	if f.Snapshot().Errors[FieldReturnDate] == "" {
		t.Fatal("equal return date not rejected")
	}

	f.SetTripType(TripOneWay)
	snap := f.Snapshot()
	if snap.Draft.ReturnDate != "" {
		t.Error("return date value survived switch to one-way")
	}
	if snap.Errors[FieldReturnDate] != "" {
		t.Error("return date error survived switch to one-way")
	}
}

func TestSuggestionAcceptanceAndAutoDistance(t *testing.T) {
	f := NewForm(FormConfig{Resolver: places.GazetteerResolver{}, Debounce: time.Millisecond})

	f.SetPickup("chennai")
	waitFor(t, time.Second, func() bool { return len(f.Snapshot().PickupSuggestions) > 0 })

	if err := f.AcceptPickupSuggestion(0); err != nil {
		t.Fatalf("AcceptPickupSuggestion: %v", err)
	}
	snap := f.Snapshot()
	if snap.Draft.Pickup != "Chennai" || snap.Draft.PickupCoord == nil {
		t.Fatalf("pickup after accept: %q, coord %v", snap.Draft.Pickup, snap.Draft.PickupCoord)
	}
	if snap.PickupSuggestions != nil {
		t.Error("suggestion list not cleared after accept")
	}
	if snap.Draft.DistanceKm != "" {
		t.Error("distance filled with only one endpoint resolved")
	}

	f.SetDropoff("madurai")
	waitFor(t, time.Second, func() bool { return len(f.Snapshot().DropoffSuggestions) > 0 })
	if err := f.AcceptDropoffSuggestion(0); err != nil {
		t.Fatalf("AcceptDropoffSuggestion: %v", err)
	}

	snap = f.Snapshot()
	if snap.Draft.DistanceKm != "422.1" || !snap.Draft.DistanceAuto {
		t.Errorf("auto distance = %q (auto=%v), want 422.1 auto", snap.Draft.DistanceKm, snap.Draft.DistanceAuto)
	}

	// A manual edit keeps the value but drops the auto provenance.
	f.SetDistance("430")
	snap = f.Snapshot()
	if snap.Draft.DistanceKm != "430" || snap.Draft.DistanceAuto {
		t.Errorf("manual distance = %q (auto=%v)", snap.Draft.DistanceKm, snap.Draft.DistanceAuto)
	}

	// Editing the text again clears that endpoint's coordinates and the
	// shared distance.
	f.SetPickup("Chenn")
	snap = f.Snapshot()
	if snap.Draft.PickupCoord != nil {
		t.Error("pickup coord survived text edit")
	}
	if snap.Draft.DistanceKm != "" {
		t.Error("distance survived text edit")
	}
	if snap.Draft.DropoffCoord == nil {
		t.Error("dropoff coord cleared by pickup edit")
	}
}

func TestConfirmNotReentrant(t *testing.T) {
	sub := &stubSubmitter{res: Result{Notified: true}, block: make(chan struct{})}
	f := NewForm(FormConfig{Submitter: sub})

	fillStep1(f)
	f.Next()
	f.SetName("Ravi Kumar")
	f.SetMobile("9876543210")

	done := make(chan error, 1)
	go func() {
		_, err := f.Confirm(context.Background())
		done <- err
	}()

	waitFor(t, time.Second, func() bool { return f.Snapshot().Submission == SubmissionInFlight })

	if _, err := f.Confirm(context.Background()); err != ErrSubmissionInFlight {
		t.Errorf("re-entrant Confirm = %v, want ErrSubmissionInFlight", err)
	}
	if f.Back() {
		t.Error("Back permitted while submission in flight")
	}

	close(sub.block)
	if err := <-done; err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	if snap := f.Snapshot(); snap.Step != 3 {
		t.Errorf("step = %d after settled confirm, want 3", snap.Step)
	}
	if sub.callCount() != 1 {
		t.Errorf("submitter called %d times, want 1", sub.callCount())
	}
}

func TestResetRefusedWhileSubmitting(t *testing.T) {
	sub := &stubSubmitter{res: Result{Notified: true}, block: make(chan struct{})}
	f := NewForm(FormConfig{Submitter: sub})

	fillStep1(f)
	f.Next()
	f.SetName("Ravi Kumar")
	f.SetMobile("9876543210")

	done := make(chan error, 1)
	go func() {
		_, err := f.Confirm(context.Background())
		done <- err
	}()

	waitFor(t, time.Second, func() bool { return f.Snapshot().Submission == SubmissionInFlight })

	if f.Reset() {
		t.Fatal("Reset permitted while submission in flight")
	}
	if snap := f.Snapshot(); snap.Draft.Pickup != "Chennai" {
		t.Fatalf("refused reset still cleared the draft: %+v", snap.Draft)
	}

	close(sub.block)
	if err := <-done; err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// The settled confirm commits with the draft it was given.
	snap := f.Snapshot()
	if snap.Step != 3 || snap.Submission != SubmissionSucceeded {
		t.Errorf("after settle: step %d, submission %s", snap.Step, snap.Submission)
	}
	if snap.Draft.Pickup != "Chennai" || snap.Draft.Name != "Ravi Kumar" {
		t.Errorf("confirmed wizard lost its draft: %+v", snap.Draft)
	}

	if !f.Reset() {
		t.Error("reset refused after the submission settled")
	}
}

func TestPrefillStoreNotifiesEverySubscriber(t *testing.T) {
	store := NewPrefillStore()

	var got []Prefill
	store.Subscribe(func(p Prefill) { got = append(got, p) })
	store.Subscribe(func(p Prefill) { got = append(got, p) })

	store.Set(Prefill{Pickup: "Chennai"})
	if len(got) != 2 || got[0].Pickup != "Chennai" || got[1].Pickup != "Chennai" {
		t.Fatalf("subscriber calls = %+v, want both notified", got)
	}
	if store.Get().Pickup != "Chennai" {
		t.Errorf("stored value = %+v", store.Get())
	}
}

func TestPrefillDoesNotOverwriteUserEdits(t *testing.T) {
	store := NewPrefillStore()
	store.Set(Prefill{Pickup: "Chennai", Dropoff: "Salem", TripType: TripRoundTrip})

	f := NewForm(FormConfig{Prefill: store})
	snap := f.Snapshot()
	if snap.Draft.Pickup != "Chennai" || snap.Draft.Dropoff != "Salem" || snap.Draft.TripType != TripRoundTrip {
		t.Fatalf("prefill not applied: %+v", snap.Draft)
	}

	f.SetDropoff("Erode")
	store.Set(Prefill{Pickup: "Coimbatore", Dropoff: "Theni"})

	snap = f.Snapshot()
	if snap.Draft.Pickup != "Coimbatore" {
		t.Errorf("untouched pickup = %q, want updated prefill", snap.Draft.Pickup)
	}
	if snap.Draft.Dropoff != "Erode" {
		t.Errorf("edited dropoff = %q, prefill must not overwrite", snap.Draft.Dropoff)
	}
}

func TestConfirmPayloadCarriesFare(t *testing.T) {
	sub := &stubSubmitter{res: Result{Notified: true}}
	f := NewForm(FormConfig{Submitter: sub})

	fillStep1(f)
	f.SetTripType(TripRoundTrip)
	f.SetReturnDate(time.Now().AddDate(0, 0, 3).Format(DateLayout))
	f.SetDistance("10")
	f.Next()
	f.SetName("Ravi Kumar")
	f.SetMobile("9876543210")

	if _, err := f.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	sub.mu.Lock()
	p := sub.calls[0]
	sub.mu.Unlock()
	if p.BaseFare != "140" || p.DriverBata != "400" || p.EstimatedFare != "540" {
		t.Errorf("fare payload = %s/%s/%s, want 140/400/540", p.BaseFare, p.DriverBata, p.EstimatedFare)
	}
	if p.VehicleName != "Sedan (4+1)" {
		t.Errorf("vehicle name = %q", p.VehicleName)
	}
	if p.Time != "9:00 AM" {
		t.Errorf("time = %q, want 9:00 AM", p.Time)
	}
}
