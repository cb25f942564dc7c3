package receipts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/judychuepursuit/change-4-change-back/internal/mailer"
	"github.com/judychuepursuit/change-4-change-back/internal/shared/money"
	"github.com/judychuepursuit/change-4-change-back/internal/storage"
)

// Notifier renders a donation receipt, archives it, and emails it to the
// donor. Its failure never rolls back a settled payment; callers downgrade a
// Send error to a "payment succeeded, notification failed" outcome.
type Notifier struct {
	renderer Renderer
	mail     mailer.Service
	archive  storage.Storage // optional
	fromAddr string
	fromName string
	logger   *slog.Logger
}

func NewNotifier(renderer Renderer, mail mailer.Service, archive storage.Storage, fromAddr, fromName string, logger *slog.Logger) *Notifier {
	return &Notifier{
		renderer: renderer,
		mail:     mail,
		archive:  archive,
		fromAddr: fromAddr,
		fromName: fromName,
		logger:   logger,
	}
}

func (n *Notifier) Send(ctx context.Context, r Receipt) error {
	doc, filename, contentType, err := n.renderer.Render(r)
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	// Archive is best effort; losing the copy must not block the email.
	if n.archive != nil {
		res, err := n.archive.Put(ctx, bytes.NewReader(doc), storage.PutInput{
			Reference:   r.Reference,
			Filename:    filename,
			ContentType: contentType,
			Size:        int64(len(doc)),
		})
		if err != nil {
			n.logger.Warn("receipt archive failed", "reference", r.Reference, "err", err)
		} else {
			n.logger.Info("receipt archived", "reference", r.Reference, "key", res.Key)
		}
	}

	amount := money.Format(r.Currency, r.Amount)
	text := fmt.Sprintf("Dear %s %s,\n\nThank you for your %s donation of %s to %s.\nReference: %s\n\nThe Change 4 Change Team\n",
		r.DonorFirstName, r.DonorLastName, r.Frequency, amount, r.CharityName, r.Reference)

	e := mailer.Email{
		From:     n.fromAddr,
		FromName: n.fromName,
		To:       []string{r.DonorEmail},
		Subject:  fmt.Sprintf("Your donation receipt - %s", r.CharityName),
		TextBody: text,
		HTMLBody: string(doc),
		Attachments: []mailer.Attachment{
			{Filename: filename, ContentType: contentType, Data: doc},
		},
	}
	if err := n.mail.Send(ctx, e); err != nil {
		return fmt.Errorf("send receipt email: %w", err)
	}

	n.logger.Info("receipt sent", "to", r.DonorEmail, "reference", r.Reference)
	return nil
}
