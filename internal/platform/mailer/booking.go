package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/navidrop/taxi-site/internal/booking"
	"github.com/navidrop/taxi-site/pkg/logger"
)

// Notifier turns a booking request into the pair of notification emails:
// one to the fleet owner, and a confirmation to the customer when they
// left an address.
type Notifier struct {
	Svc        Service
	OwnerEmail string
	FromName   string
}

// SendBookingEmails sends the owner notification and, if the customer
// provided an email, the customer confirmation. The owner email is the one
// that matters: a customer-copy failure is logged and swallowed.
func (n *Notifier) SendBookingEmails(ctx context.Context, p booking.Payload) error {
	if n.Svc == nil {
		return errors.New("no mail service configured")
	}
	if n.OwnerEmail == "" {
		return errors.New("no owner email configured")
	}

	subject, text := ownerEmail(p)
	if _, err := n.Svc.Send(n.OwnerEmail, n.FromName, subject, text, textToHTML(text)); err != nil {
		return fmt.Errorf("send owner email: %w", err)
	}

	if strings.TrimSpace(p.Email) != "" {
		subject, text := customerEmail(p)
		if _, err := n.Svc.Send(p.Email, p.Name, subject, text, textToHTML(text)); err != nil {
			logger.WarnContext(ctx, "customer confirmation email failed",
				"error", err,
				"customer", p.Name,
			)
		}
	}

	return nil
}

func ownerEmail(p booking.Payload) (subject, text string) {
	var b strings.Builder
	b.WriteString("New booking request received:\n\n")
	b.WriteString("Customer Details:\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Mobile: %s\n", p.Mobile)
	if p.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", p.Email)
	}
	b.WriteString("\nBooking Details:\n")
	fmt.Fprintf(&b, "Pickup Location: %s\n", p.Pickup)
	fmt.Fprintf(&b, "Drop-off Location: %s\n", p.Dropoff)
	fmt.Fprintf(&b, "Date: %s\n", p.Date)
	if p.ReturnDate != "" {
		fmt.Fprintf(&b, "Return Date: %s\n", p.ReturnDate)
	}
	fmt.Fprintf(&b, "Time: %s\n", p.Time)
	fmt.Fprintf(&b, "Vehicle Type: %s\n", p.VehicleName)
	fmt.Fprintf(&b, "Estimated Distance: %s km\n", p.Distance)
	fmt.Fprintf(&b, "Estimated Fare: ₹%s\n", p.EstimatedFare)
	b.WriteString("\nPlease process this booking and contact the customer to confirm.\n")

	return "New Taxi Booking Request", b.String()
}

func customerEmail(p booking.Payload) (subject, text string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", p.Name)
	b.WriteString("Thank you for booking with NaviDrop Taxi. Here are your booking details:\n\n")
	fmt.Fprintf(&b, "Pickup Location: %s\n", p.Pickup)
	fmt.Fprintf(&b, "Drop-off Location: %s\n", p.Dropoff)
	fmt.Fprintf(&b, "Date: %s\n", p.Date)
	if p.ReturnDate != "" {
		fmt.Fprintf(&b, "Return Date: %s\n", p.ReturnDate)
	}
	fmt.Fprintf(&b, "Time: %s\n", p.Time)
	fmt.Fprintf(&b, "Vehicle Type: %s\n", p.VehicleName)
	fmt.Fprintf(&b, "Estimated Distance: %s km\n", p.Distance)
	fmt.Fprintf(&b, "Estimated Fare: ₹%s\n", p.EstimatedFare)
	b.WriteString("\nWe will contact you shortly to confirm your booking.\n\n")
	b.WriteString("Best regards,\nNaviDrop Taxi Team\n")

	return "Your Taxi Booking Confirmation", b.String()
}

func textToHTML(text string) string {
	escaped := html.EscapeString(text)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}
