package email

import (
	"fmt"
	"os"

	"github.com/judychuepursuit/change-4-change-back/internal/config"
	"github.com/judychuepursuit/change-4-change-back/internal/mailer"
)

// FromConfig picks the outbound mail transport. The receipt notifier only ever
// sees mailer.Service.
func FromConfig(cfg config.MailConfig) (mailer.Service, error) {
	switch cfg.Driver {
	case "mailtrap":
		apiURL := os.Getenv("MAILTRAP_API_URL")
		apiKey := os.Getenv("MAILTRAP_API_TOKEN")
		return NewMailtrapMailer(apiURL, apiKey), nil
	case "smtp":
		return mailer.NewSMTPMailer(cfg.SMTP), nil
	case "mock":
		return &mailer.Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER: %s", cfg.Driver)
	}
}
