package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/navidrop/taxi-site/internal/fare"
	"github.com/navidrop/taxi-site/internal/fleet"
	"github.com/navidrop/taxi-site/internal/geo"
	"github.com/navidrop/taxi-site/internal/places"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrWrongStep          = errors.New("action not allowed in current step")
	ErrNoSuggestion       = errors.New("no such suggestion")
	ErrNoSubmitter        = errors.New("no submitter configured")
)

// Form is the booking wizard state machine: step 1 (trip and vehicle),
// step 2 (contact details), step 3 (confirmation). All state is guarded by a
// mutex because debounced resolver callbacks land on timer goroutines.
type Form struct {
	mu sync.Mutex

	draft      Draft
	errors     map[Field]string
	step       int
	submission SubmissionState
	touched    map[Field]bool

	pickupSug  []places.Suggestion
	dropoffSug []places.Suggestion
	pickupDeb  *places.Debouncer
	dropoffDeb *places.Debouncer

	submitter Submitter
	result    *Result
}

// FormConfig wires a Form's collaborators.
type FormConfig struct {
	Resolver  places.Resolver
	Submitter Submitter
	Debounce  time.Duration
	Prefill   *PrefillStore
}

// NewForm builds a wizard at step 1 with an empty draft. When a prefill
// store is given, its current values seed the untouched fields and later
// updates keep flowing in one-way until the user edits a field.
func NewForm(cfg FormConfig) *Form {
	f := &Form{
		draft:      NewDraft(),
		errors:     make(map[Field]string),
		step:       1,
		submission: SubmissionIdle,
		touched:    make(map[Field]bool),
		submitter:  cfg.Submitter,
	}
	if cfg.Resolver != nil {
		f.pickupDeb = places.NewDebouncer(cfg.Resolver, cfg.Debounce, f.applyPickupSuggestions)
		f.dropoffDeb = places.NewDebouncer(cfg.Resolver, cfg.Debounce, f.applyDropoffSuggestions)
	}
	if cfg.Prefill != nil {
		f.ApplyPrefill(cfg.Prefill.Get())
		cfg.Prefill.Subscribe(f.ApplyPrefill)
	}
	return f
}

// Snapshot is a point-in-time copy of the wizard for rendering.
type Snapshot struct {
	Draft              Draft               `json:"draft"`
	Errors             map[Field]string    `json:"errors"`
	Step               int                 `json:"step"`
	Submission         SubmissionState     `json:"submission"`
	PickupSuggestions  []places.Suggestion `json:"pickup_suggestions"`
	DropoffSuggestions []places.Suggestion `json:"dropoff_suggestions"`
	Fare               fare.Quote          `json:"fare"`
	Result             *Result             `json:"result,omitempty"`
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[Field]string, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	snap := Snapshot{
		Draft:              f.draft,
		Errors:             errs,
		Step:               f.step,
		Submission:         f.submission,
		PickupSuggestions:  append([]places.Suggestion(nil), f.pickupSug...),
		DropoffSuggestions: append([]places.Suggestion(nil), f.dropoffSug...),
		Fare:               f.fareLocked(),
	}
	if f.result != nil {
		r := *f.result
		snap.Result = &r
	}
	return snap
}

// SetPickup records an edited pickup text. Editing always clears the
// endpoint's resolved coordinates, the shared distance, and its suggestion
// list, then schedules a debounced lookup.
func (f *Form) SetPickup(text string) {
	f.mu.Lock()
	f.draft.Pickup = text
	f.draft.PickupCoord = nil
	f.clearDistanceLocked()
	f.pickupSug = nil
	f.touched[FieldPickup] = true
	f.revalidateLocked(FieldPickup)
	f.mu.Unlock()

	if f.pickupDeb != nil {
		f.pickupDeb.Query(text)
	}
}

// SetDropoff mirrors SetPickup for the drop endpoint.
func (f *Form) SetDropoff(text string) {
	f.mu.Lock()
	f.draft.Dropoff = text
	f.draft.DropoffCoord = nil
	f.clearDistanceLocked()
	f.dropoffSug = nil
	f.touched[FieldDropoff] = true
	f.revalidateLocked(FieldDropoff)
	f.mu.Unlock()

	if f.dropoffDeb != nil {
		f.dropoffDeb.Query(text)
	}
}

// AcceptPickupSuggestion resolves the pickup endpoint to suggestion i:
// the text becomes the display name, the coordinates stick, and when the
// other endpoint is already resolved the distance is recomputed.
func (f *Form) AcceptPickupSuggestion(i int) error {
	f.mu.Lock()
	if i < 0 || i >= len(f.pickupSug) {
		f.mu.Unlock()
		return ErrNoSuggestion
	}
	s := f.pickupSug[i]
	f.draft.Pickup = s.DisplayName
	c := s.Coord
	f.draft.PickupCoord = &c
	f.pickupSug = nil
	f.touched[FieldPickup] = true
	f.revalidateLocked(FieldPickup)
	f.autoDistanceLocked()
	f.mu.Unlock()

	if f.pickupDeb != nil {
		f.pickupDeb.Stop()
	}
	return nil
}

func (f *Form) AcceptDropoffSuggestion(i int) error {
	f.mu.Lock()
	if i < 0 || i >= len(f.dropoffSug) {
		f.mu.Unlock()
		return ErrNoSuggestion
	}
	s := f.dropoffSug[i]
	f.draft.Dropoff = s.DisplayName
	c := s.Coord
	f.draft.DropoffCoord = &c
	f.dropoffSug = nil
	f.touched[FieldDropoff] = true
	f.revalidateLocked(FieldDropoff)
	f.autoDistanceLocked()
	f.mu.Unlock()

	if f.dropoffDeb != nil {
		f.dropoffDeb.Stop()
	}
	return nil
}

// SetTripType switches between one-way and round trip. Switching to one-way
// clears the return date and its error so a hidden field never lingers as
// required.
func (f *Form) SetTripType(t TripType) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.TripType = t
	f.touched[FieldTripType] = true
	if t == TripOneWay {
		f.draft.ReturnDate = ""
	}
	delete(f.errors, FieldReturnDate)
}

func (f *Form) SetPickupDate(date string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.PickupDate = date
	f.touched[FieldPickupDate] = true
	f.revalidateLocked(FieldPickupDate)
	// The return-date rule reads the pickup date.
	if _, hadErr := f.errors[FieldReturnDate]; hadErr || f.draft.ReturnDate != "" {
		f.revalidateLocked(FieldReturnDate)
	}
}

func (f *Form) SetReturnDate(date string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.ReturnDate = date
	f.touched[FieldReturnDate] = true
	f.revalidateLocked(FieldReturnDate)
}

func (f *Form) SetTime(hour, minute int, period Period) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Time = TimeOfDay{Hour: hour, Minute: minute, Period: period}
	f.touched[FieldTime] = true
	f.revalidateLocked(FieldTime)
}

func (f *Form) SetVehicleType(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.VehicleType = id
	f.touched[FieldVehicleType] = true
	f.revalidateLocked(FieldVehicleType)
}

// SetDistance records a manual distance edit. The value survives but loses
// its auto-filled provenance.
func (f *Form) SetDistance(km string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.DistanceKm = km
	f.draft.DistanceAuto = false
}

func (f *Form) SetName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Name = name
	f.touched[FieldName] = true
	f.revalidateLocked(FieldName)
}

// SetMobile strips non-digits and truncates to ten digits before storing.
func (f *Form) SetMobile(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Mobile = NormalizeMobile(raw)
	f.touched[FieldMobile] = true
	f.revalidateLocked(FieldMobile)
}

func (f *Form) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Email = email
	f.touched[FieldEmail] = true
	f.revalidateLocked(FieldEmail)
}

// Next advances step 1 to step 2 when the step-1 fields validate. On failure
// the field errors are populated and the step does not move.
func (f *Form) Next() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != 1 {
		return false
	}
	if !f.checkStepLocked(1) {
		return false
	}
	f.step = 2
	return true
}

// Back returns from step 2 to step 1. It is refused while a submission is in
// flight.
func (f *Form) Back() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != 2 || f.submission == SubmissionInFlight {
		return false
	}
	f.step = 1
	return true
}

// Confirm validates the contact fields and runs the submission dispatcher.
// It is not re-entrant: a second call while in flight fails immediately.
// Notification-channel failure is carried in the result's warning and still
// reaches step 3; only a dispatcher error keeps the wizard on step 2.
func (f *Form) Confirm(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.step != 2 {
		f.mu.Unlock()
		return Result{}, ErrWrongStep
	}
	if f.submission == SubmissionInFlight {
		f.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	if f.submitter == nil {
		f.mu.Unlock()
		return Result{}, ErrNoSubmitter
	}
	if !f.checkStepLocked(2) {
		f.mu.Unlock()
		return Result{}, ErrValidation
	}
	f.submission = SubmissionInFlight
	payload := f.payloadLocked()
	f.mu.Unlock()

	res, err := f.submitter.Submit(ctx, payload)

	f.mu.Lock()
	defer f.mu.Unlock()
	// The wizard may have been taken over (reset) while the submitter ran;
	// only the attempt that still owns the in-flight state commits.
	if f.submission != SubmissionInFlight {
		return res, err
	}
	if err != nil {
		f.submission = SubmissionFailed
		return Result{}, err
	}
	f.submission = SubmissionSucceeded
	f.step = 3
	f.result = &res
	return res, nil
}

// Reset clears the whole draft back to initial values, including
// suggestions, coordinates, and errors, and cancels pending lookups. Like
// Back, it is refused while a submission is in flight so a settling Confirm
// never commits on top of a freshly cleared draft.
func (f *Form) Reset() bool {
	f.mu.Lock()
	if f.submission == SubmissionInFlight {
		f.mu.Unlock()
		return false
	}
	f.draft = NewDraft()
	f.errors = make(map[Field]string)
	f.touched = make(map[Field]bool)
	f.step = 1
	f.submission = SubmissionIdle
	f.pickupSug = nil
	f.dropoffSug = nil
	f.result = nil
	f.mu.Unlock()

	if f.pickupDeb != nil {
		f.pickupDeb.Stop()
	}
	if f.dropoffDeb != nil {
		f.dropoffDeb.Stop()
	}
	return true
}

// ApplyPrefill copies shared page-level values into fields the user has not
// edited yet. Prefill is one-way: diverged fields are never overwritten.
func (f *Form) ApplyPrefill(p Prefill) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p.Pickup != "" && !f.touched[FieldPickup] {
		f.draft.Pickup = p.Pickup
	}
	if p.Dropoff != "" && !f.touched[FieldDropoff] {
		f.draft.Dropoff = p.Dropoff
	}
	if p.Date != "" && !f.touched[FieldPickupDate] {
		f.draft.PickupDate = p.Date
	}
	if p.ReturnDate != "" && !f.touched[FieldReturnDate] {
		f.draft.ReturnDate = p.ReturnDate
	}
	if p.TripType != "" && !f.touched[FieldTripType] {
		f.draft.TripType = p.TripType
	}
	if p.Distance != "" && !f.draft.DistanceAuto && f.draft.DistanceKm == "" {
		f.draft.DistanceKm = p.Distance
	}
}

func (f *Form) applyPickupSuggestions(query string, s []places.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Guard against a response for text the user has since replaced.
	if f.draft.Pickup != query {
		return
	}
	f.pickupSug = s
}

func (f *Form) applyDropoffSuggestions(query string, s []places.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft.Dropoff != query {
		return
	}
	f.dropoffSug = s
}

func (f *Form) revalidateLocked(field Field) {
	if msg := ValidateField(field, &f.draft); msg != "" {
		f.errors[field] = msg
	} else {
		delete(f.errors, field)
	}
}

// checkStepLocked runs the step's validation, records failures, and clears
// stale errors for fields that now pass.
func (f *Form) checkStepLocked(step int) bool {
	fields := StepFields(step, f.draft.TripType)
	errs := Validate(fields, &f.draft)
	for _, field := range fields {
		if msg, ok := errs[field]; ok {
			f.errors[field] = msg
		} else {
			delete(f.errors, field)
		}
	}
	return len(errs) == 0
}

func (f *Form) clearDistanceLocked() {
	f.draft.DistanceKm = ""
	f.draft.DistanceAuto = false
}

// autoDistanceLocked overwrites the distance once both endpoints are
// resolved to coordinates.
func (f *Form) autoDistanceLocked() {
	if f.draft.PickupCoord == nil || f.draft.DropoffCoord == nil {
		return
	}
	d := geo.DistanceKm(*f.draft.PickupCoord, *f.draft.DropoffCoord)
	f.draft.DistanceKm = strconv.FormatFloat(d, 'f', 1, 64)
	f.draft.DistanceAuto = true
}

func (f *Form) fareLocked() fare.Quote {
	v, ok := fleet.ByID(f.draft.VehicleType)
	if !ok {
		return fare.Quote{}
	}
	dist, err := strconv.ParseFloat(strings.TrimSpace(f.draft.DistanceKm), 64)
	if err != nil {
		dist = 0
	}
	return fare.Compute(v, dist, f.draft.TripType == TripRoundTrip)
}

func (f *Form) payloadLocked() Payload {
	q := f.fareLocked()
	vehicleName := f.draft.VehicleType
	if v, ok := fleet.ByID(f.draft.VehicleType); ok {
		vehicleName = v.DisplayName
	}
	return Payload{
		Pickup:        f.draft.Pickup,
		Dropoff:       f.draft.Dropoff,
		Date:          f.draft.PickupDate,
		ReturnDate:    f.draft.ReturnDate,
		TripType:      string(f.draft.TripType),
		Time:          f.draft.Time.String(),
		VehicleType:   f.draft.VehicleType,
		VehicleName:   vehicleName,
		Distance:      f.draft.DistanceKm,
		Name:          strings.TrimSpace(f.draft.Name),
		Mobile:        f.draft.Mobile,
		Email:         f.draft.Email,
		BaseFare:      formatAmount(q.Base),
		DriverBata:    formatAmount(q.Surcharge),
		EstimatedFare: formatAmount(q.Total),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
