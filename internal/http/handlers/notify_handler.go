package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/navidrop/taxi-site/internal/booking"
	"github.com/navidrop/taxi-site/internal/http/response"
	"github.com/navidrop/taxi-site/internal/platform/mailer"
	"github.com/navidrop/taxi-site/pkg/events"
	"github.com/navidrop/taxi-site/pkg/logger"
)

// NotifyHandler receives a confirmed booking and fans it out to email. The
// ack contract is a JSON body with "success": the form's dispatcher treats
// anything else as a failed notification.
type NotifyHandler struct {
	Notifier *mailer.Notifier
	Bus      events.Publisher // optional
}

func NewNotifyHandler(n *mailer.Notifier, bus events.Publisher) *NotifyHandler {
	return &NotifyHandler{Notifier: n, Bus: bus}
}

func (h *NotifyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.send)
	return r
}

type notifyAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (h *NotifyHandler) send(w http.ResponseWriter, r *http.Request) {
	var p booking.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		response.WriteJSON(w, http.StatusBadRequest, notifyAck{Error: "invalid json"})
		return
	}
	if p.Name == "" || p.Mobile == "" || p.Pickup == "" || p.Dropoff == "" || p.Date == "" {
		response.WriteJSON(w, http.StatusBadRequest, notifyAck{Error: "missing booking fields"})
		return
	}

	if err := h.Notifier.SendBookingEmails(r.Context(), p); err != nil {
		logger.ErrorContext(r.Context(), "booking notification failed", "error", err, "customer", p.Name)
		response.WriteJSON(w, http.StatusInternalServerError, notifyAck{Error: err.Error()})
		return
	}

	if h.Bus != nil {
		received := events.BookingReceivedEvent{
			Pickup:        p.Pickup,
			Dropoff:       p.Dropoff,
			Date:          p.Date,
			TripType:      p.TripType,
			VehicleType:   p.VehicleType,
			CustomerName:  p.Name,
			Mobile:        p.Mobile,
			EstimatedFare: p.EstimatedFare,
			ReceivedAt:    time.Now(),
		}
		if err := h.Bus.Publish(r.Context(), events.BookingReceived, received); err != nil {
			logger.WarnContext(r.Context(), "booking event publish failed", "error", err)
		}

		notified := events.BookingNotifiedEvent{
			CustomerName:  p.Name,
			CustomerEmail: p.Email,
			OwnerEmail:    h.Notifier.OwnerEmail,
			NotifiedAt:    time.Now(),
		}
		if err := h.Bus.Publish(r.Context(), events.BookingNotified, notified); err != nil {
			logger.WarnContext(r.Context(), "booking event publish failed", "error", err)
		}
	}

	response.WriteJSON(w, http.StatusOK, notifyAck{Success: true})
}
