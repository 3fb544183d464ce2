package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Payload is the structured booking notification sent to the backend
// endpoint. Fare fields are decimal-formatted strings.
type Payload struct {
	Pickup        string `json:"pickup"`
	Dropoff       string `json:"dropoff"`
	Date          string `json:"date"`
	ReturnDate    string `json:"returnDate"`
	TripType      string `json:"tripType"`
	Time          string `json:"time"`
	VehicleType   string `json:"vehicleType"`
	VehicleName   string `json:"vehicleName"`
	Distance      string `json:"distance"`
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	Email         string `json:"email"`
	BaseFare      string `json:"baseFare"`
	DriverBata    string `json:"driverBata"`
	EstimatedFare string `json:"estimatedFare"`
}

// Result accounts for the two submission channels independently. The deep
// link is the primary channel; the notification is best-effort, so Warning
// carries a non-blocking advisory when it fails.
type Result struct {
	WhatsAppURL string `json:"whatsapp_url"`
	LinkOpened  bool   `json:"link_opened"`
	Notified    bool   `json:"notified"`
	Warning     string `json:"warning,omitempty"`
}

// Submitter hands a finished draft to the outside world.
type Submitter interface {
	Submit(ctx context.Context, p Payload) (Result, error)
}

// Dispatcher submits a booking over both channels: a pre-filled WhatsApp
// deep link to the service's dispatch number, and a POST to the notification
// endpoint. Both run concurrently; Submit returns once both have settled.
type Dispatcher struct {
	WhatsAppNumber string
	NotifyURL      string
	Client         *http.Client
	// Open receives the assembled deep link. Fire-and-forget: an error here
	// only means the link was not auto-opened, never a failed submission.
	// May be nil when the caller opens the link itself.
	Open    func(link string) error
	Timeout time.Duration
}

const defaultNotifyTimeout = 10 * time.Second

func (d *Dispatcher) Submit(ctx context.Context, p Payload) (Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Result{}, fmt.Errorf("encode notification payload: %w", err)
	}

	link := "https://wa.me/" + d.WhatsAppNumber + "?text=" + url.QueryEscape(Summary(p))

	var (
		wg        sync.WaitGroup
		opened    bool
		notifyErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if d.Open == nil {
			return
		}
		if err := d.Open(link); err == nil {
			opened = true
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		notifyErr = d.notify(ctx, body)
	}()

	wg.Wait()

	res := Result{WhatsAppURL: link, LinkOpened: opened, Notified: notifyErr == nil}
	if notifyErr != nil {
		res.Warning = "booking sent via WhatsApp, but the notification email could not be delivered"
	}
	return res, nil
}

func (d *Dispatcher) notify(ctx context.Context, body []byte) error {
	if d.NotifyURL == "" {
		return fmt.Errorf("no notification endpoint configured")
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.NotifyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}

	var ack struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("decode notification ack: %w", err)
	}
	if !ack.Success {
		return fmt.Errorf("notification endpoint reported failure")
	}
	return nil
}

// Summary renders the fixed human-readable booking message pasted into the
// WhatsApp conversation.
func Summary(p Payload) string {
	var b strings.Builder

	b.WriteString("🚖 *New Booking Request*\n\n")
	fmt.Fprintf(&b, "📍 Pickup: %s\n", p.Pickup)
	fmt.Fprintf(&b, "📍 Drop: %s\n", p.Dropoff)
	fmt.Fprintf(&b, "📅 Date: %s\n", p.Date)
	if p.TripType == string(TripRoundTrip) && p.ReturnDate != "" {
		fmt.Fprintf(&b, "🔁 Return: %s\n", p.ReturnDate)
	}
	fmt.Fprintf(&b, "⏰ Time: %s\n", p.Time)
	fmt.Fprintf(&b, "🚗 Vehicle: %s\n", p.VehicleName)
	fmt.Fprintf(&b, "📏 Estimated Distance: %s km\n", p.Distance)
	if p.DriverBata != "" && p.DriverBata != "0" {
		fmt.Fprintf(&b, "💰 Estimated Fare: ₹%s (₹%s + ₹%s driver bata)\n", p.EstimatedFare, p.BaseFare, p.DriverBata)
	} else {
		fmt.Fprintf(&b, "💰 Estimated Fare: ₹%s\n", p.EstimatedFare)
	}

	b.WriteString("\n👤 Customer Details:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Mobile: %s", p.Mobile)
	if p.Email != "" {
		fmt.Fprintf(&b, "\nEmail: %s", p.Email)
	}

	return b.String()
}
