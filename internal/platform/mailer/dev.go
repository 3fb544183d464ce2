package mailer

import "github.com/navidrop/taxi-site/pkg/logger"

// DevMailer logs outgoing mail instead of sending it. Used in local
// development where no SMTP relay is configured.
type DevMailer struct{}

func (DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("dev mailer: email suppressed",
		"to", toEmail,
		"to_name", toName,
		"subject", subject,
		"body", text,
	)
	return "dev", nil
}
