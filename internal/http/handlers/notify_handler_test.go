package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/navidrop/taxi-site/internal/booking"
	"github.com/navidrop/taxi-site/internal/http/handlers"
	"github.com/navidrop/taxi-site/internal/platform/mailer"
	"github.com/navidrop/taxi-site/pkg/events"
)

type mockMailer struct {
	sent    []string // recipients in send order
	sendErr error
}

func (m *mockMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, toEmail)
	return "mock-id", nil
}

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockBus) Close() error { return nil }

func notifyBody() []byte {
	raw, _ := json.Marshal(booking.Payload{
		Pickup:        "Chennai",
		Dropoff:       "Madurai",
		Date:          "2025-06-10",
		TripType:      "one-way",
		Time:          "9:00 AM",
		VehicleType:   "sedan",
		VehicleName:   "Sedan (4+1)",
		Distance:      "450",
		Name:          "Ravi Kumar",
		Mobile:        "9876543210",
		Email:         "ravi@example.com",
		EstimatedFare: "6300",
	})
	return raw
}

func TestNotifySendsEmailsAndAcks(t *testing.T) {
	mm := &mockMailer{}
	bus := &mockBus{}
	h := handlers.NewNotifyHandler(&mailer.Notifier{Svc: mm, OwnerEmail: "owner@navidrop.local"}, bus)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(notifyBody()))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var ack struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if !ack.Success {
		t.Error("ack.success = false")
	}
	if len(mm.sent) != 2 || mm.sent[0] != "owner@navidrop.local" || mm.sent[1] != "ravi@example.com" {
		t.Errorf("recipients = %v, want owner then customer", mm.sent)
	}
	if len(bus.subjects) != 2 || bus.subjects[0] != events.BookingReceived || bus.subjects[1] != events.BookingNotified {
		t.Errorf("published subjects = %v, want received then notified", bus.subjects)
	}
}

func TestNotifyRejectsIncompleteBooking(t *testing.T) {
	mm := &mockMailer{}
	h := handlers.NewNotifyHandler(&mailer.Notifier{Svc: mm, OwnerEmail: "owner@navidrop.local"}, nil)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader([]byte(`{"name":"Ravi"}`)))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if len(mm.sent) != 0 {
		t.Error("emails sent for incomplete booking")
	}
}

func TestNotifyMailerFailure(t *testing.T) {
	mm := &mockMailer{sendErr: errors.New("relay down")}
	bus := &mockBus{}
	h := handlers.NewNotifyHandler(&mailer.Notifier{Svc: mm, OwnerEmail: "owner@navidrop.local"}, bus)
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", bytes.NewReader(notifyBody()))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	var ack struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ack.Success {
		t.Error("ack.success = true despite mailer failure")
	}
	if len(bus.subjects) != 0 {
		t.Errorf("events published for a failed notification: %v", bus.subjects)
	}
}
