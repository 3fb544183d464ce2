package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/navidrop/taxi-site/internal/booking"
	"github.com/navidrop/taxi-site/internal/http/response"
)

// SessionStore keeps live booking wizards in memory. Sessions hold running
// debounce timers, so they live in process memory rather than a shared
// store; idle ones are swept after the TTL.
type SessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	data    map[string]*session
	newForm func() *booking.Form
	done    chan struct{}
}

type session struct {
	form     *booking.Form
	lastSeen time.Time
}

func NewSessionStore(ttl time.Duration, newForm func() *booking.Form) *SessionStore {
	s := &SessionStore{
		ttl:     ttl,
		data:    make(map[string]*session),
		newForm: newForm,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *SessionStore) Create() (string, *booking.Form) {
	id := uuid.New().String()
	form := s.newForm()

	s.mu.Lock()
	s.data[id] = &session{form: form, lastSeen: time.Now()}
	s.mu.Unlock()

	return id, form
}

func (s *SessionStore) Get(id string) (*booking.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess.form, true
}

func (s *SessionStore) Close() {
	close(s.done)
}

func (s *SessionStore) sweep() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, sess := range s.data {
				if sess.lastSeen.Before(cutoff) {
					delete(s.data, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// SessionHandler exposes the booking wizard over HTTP for clients that keep
// no local state. Every mutation returns the fresh snapshot.
type SessionHandler struct {
	Store *SessionStore
}

func NewSessionHandler(store *SessionStore) *SessionHandler {
	return &SessionHandler{Store: store}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.patch)
	r.Post("/{id}/next", h.next)
	r.Post("/{id}/back", h.back)
	r.Post("/{id}/reset", h.reset)
	r.Post("/{id}/accept-suggestion", h.acceptSuggestion)
	r.Post("/{id}/confirm", h.confirm)

	return r
}

type sessionResponse struct {
	ID string `json:"id"`
	booking.Snapshot
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	id, form := h.Store.Create()
	response.WriteJSON(w, http.StatusCreated, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*booking.Form, string, bool) {
	id := chi.URLParam(r, "id")
	form, ok := h.Store.Get(id)
	if !ok {
		response.NotFound(w, "no such booking session")
		return nil, "", false
	}
	return form, id, true
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

// patchRequest carries partial field updates; only present fields are
// applied, in declaration order.
type patchRequest struct {
	Pickup      *string `json:"pickup"`
	Dropoff     *string `json:"dropoff"`
	TripType    *string `json:"trip_type"`
	PickupDate  *string `json:"pickup_date"`
	ReturnDate  *string `json:"return_date"`
	Time        *struct {
		Hour   int    `json:"hour"`
		Minute int    `json:"minute"`
		Period string `json:"period"`
	} `json:"time"`
	VehicleType *string `json:"vehicle_type"`
	DistanceKm  *string `json:"distance_km"`
	Name        *string `json:"name"`
	Mobile      *string `json:"mobile"`
	Email       *string `json:"email"`
}

func (h *SessionHandler) patch(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var in patchRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	if in.Pickup != nil {
		form.SetPickup(*in.Pickup)
	}
	if in.Dropoff != nil {
		form.SetDropoff(*in.Dropoff)
	}
	if in.TripType != nil {
		t := booking.TripType(*in.TripType)
		if t != booking.TripOneWay && t != booking.TripRoundTrip {
			response.BadRequest(w, "trip_type must be 'one-way' or 'round-trip'")
			return
		}
		form.SetTripType(t)
	}
	if in.PickupDate != nil {
		form.SetPickupDate(*in.PickupDate)
	}
	if in.ReturnDate != nil {
		form.SetReturnDate(*in.ReturnDate)
	}
	if in.Time != nil {
		form.SetTime(in.Time.Hour, in.Time.Minute, booking.Period(in.Time.Period))
	}
	if in.VehicleType != nil {
		form.SetVehicleType(*in.VehicleType)
	}
	if in.DistanceKm != nil {
		form.SetDistance(*in.DistanceKm)
	}
	if in.Name != nil {
		form.SetName(*in.Name)
	}
	if in.Mobile != nil {
		form.SetMobile(*in.Mobile)
	}
	if in.Email != nil {
		form.SetEmail(*in.Email)
	}

	response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

func (h *SessionHandler) next(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !form.Next() {
		response.WriteJSON(w, http.StatusUnprocessableEntity, sessionResponse{ID: id, Snapshot: form.Snapshot()})
		return
	}
	response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

func (h *SessionHandler) back(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !form.Back() {
		response.Conflict(w, "cannot go back from the current state")
		return
	}
	response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

func (h *SessionHandler) reset(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !form.Reset() {
		response.Conflict(w, "cannot reset while a submission is in flight")
		return
	}
	response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

type acceptSuggestionRequest struct {
	Field string `json:"field"` // "pickup" or "dropoff"
	Index int    `json:"index"`
}

func (h *SessionHandler) acceptSuggestion(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var in acceptSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	var err error
	switch in.Field {
	case "pickup":
		err = form.AcceptPickupSuggestion(in.Index)
	case "dropoff":
		err = form.AcceptDropoffSuggestion(in.Index)
	default:
		response.BadRequest(w, "field must be 'pickup' or 'dropoff'")
		return
	}
	if err != nil {
		response.NotFound(w, "no such suggestion")
		return
	}

	response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
}

func (h *SessionHandler) confirm(w http.ResponseWriter, r *http.Request) {
	form, id, ok := h.lookup(w, r)
	if !ok {
		return
	}

	_, err := form.Confirm(r.Context())
	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusOK, sessionResponse{ID: id, Snapshot: form.Snapshot()})
	case errors.Is(err, booking.ErrValidation):
		response.WriteJSON(w, http.StatusUnprocessableEntity, sessionResponse{ID: id, Snapshot: form.Snapshot()})
	case errors.Is(err, booking.ErrSubmissionInFlight):
		response.Conflict(w, "submission already in flight")
	case errors.Is(err, booking.ErrWrongStep):
		response.Conflict(w, "confirm is only allowed from the contact step")
	default:
		response.InternalError(w, "booking submission failed")
	}
}
