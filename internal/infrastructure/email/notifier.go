package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/render"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/domain/marketplace"
	"github.com/fachwerk-hq/fachwerk/internal/domain/shared/events"
	apperrors "github.com/fachwerk-hq/fachwerk/internal/shared/errors"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

// requestReader is the slice of the request store the notifier needs.
type requestReader interface {
	GetByID(ctx context.Context, requestID string) (*marketplace.Request, error)
}

// LedgerNotifier mails the counterpart of each relayed ledger entry: the
// consumer when a partner wrote, the partner's owners otherwise.
type LedgerNotifier struct {
	sender   Sender
	profiles identity.ProfileReader
	requests requestReader
	baseURL  string
	logger   logger.Interface
}

var _ events.EventHandler = (*LedgerNotifier)(nil)

func NewLedgerNotifier(sender Sender, profiles identity.ProfileReader, requests requestReader, baseURL string, logger logger.Interface) *LedgerNotifier {
	return &LedgerNotifier{
		sender:   sender,
		profiles: profiles,
		requests: requests,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

func (n *LedgerNotifier) Handle(ctx context.Context, event events.DomainEvent) error {
	delivery, ok := event.(marketplace.Delivery)
	if !ok {
		return nil
	}

	recipients, err := n.recipients(ctx, delivery)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		n.logger.Debugw("no notification recipients",
			"conversation_id", delivery.Conversation.ID(),
			"message_id", delivery.Message.ID(),
		)
		return nil
	}

	req, err := n.requests.GetByID(ctx, delivery.Conversation.RequestID())
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to load request for notification: %w", err)
	}

	e := delivery.Message.Event()
	text := render.Text(e)
	link := fmt.Sprintf("%s/requests/%s", n.baseURL, req.ID())

	mail := Mail{
		To:        recipients,
		Subject:   render.Subject(e, req.Summary()),
		PlainBody: text + "\n\n" + link + "\n",
		HTMLBody: fmt.Sprintf(`<p>%s</p><p><a href="%s">Zur Anfrage</a></p>`,
			html.EscapeString(text), html.EscapeString(link)),
	}
	if err := n.sender.Send(mail); err != nil {
		n.logger.Warnw("failed to send ledger notification",
			"message_id", delivery.Message.ID(),
			"error", err,
		)
		return err
	}

	n.logger.Infow("ledger notification sent",
		"message_id", delivery.Message.ID(),
		"recipients", len(recipients),
	)
	return nil
}

func (n *LedgerNotifier) recipients(ctx context.Context, d marketplace.Delivery) ([]string, error) {
	var profiles []*identity.Profile
	if d.NotifiesConsumer() {
		p, err := n.profiles.GetProfile(ctx, d.Conversation.ConsumerID())
		if err != nil {
			if apperrors.IsNotFoundError(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to load consumer profile: %w", err)
		}
		profiles = append(profiles, p)
	} else {
		owners, err := n.profiles.PartnerOwnerProfiles(ctx, d.Conversation.PartnerID())
		if err != nil {
			return nil, fmt.Errorf("failed to load partner owners: %w", err)
		}
		profiles = owners
	}

	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.Email != "" {
			out = append(out, p.Email)
		}
	}
	return out, nil
}
