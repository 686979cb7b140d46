package marketplace

import (
	"time"

	"github.com/fachwerk-hq/fachwerk/internal/shared/id"
)

// Conversation scopes the ledger between one request's consumer and one partner.
type Conversation struct {
	id         string
	requestID  string
	partnerID  string
	consumerID string
	createdAt  time.Time
}

func NewConversation(requestID, partnerID, consumerID string) *Conversation {
	return &Conversation{
		id:         id.New(id.PrefixConversation),
		requestID:  requestID,
		partnerID:  partnerID,
		consumerID: consumerID,
		createdAt:  time.Now().UTC(),
	}
}

func ReconstructConversation(conversationID, requestID, partnerID, consumerID string, createdAt time.Time) *Conversation {
	return &Conversation{
		id:         conversationID,
		requestID:  requestID,
		partnerID:  partnerID,
		consumerID: consumerID,
		createdAt:  createdAt,
	}
}

func (c *Conversation) ID() string {
	return c.id
}

func (c *Conversation) RequestID() string {
	return c.requestID
}

func (c *Conversation) PartnerID() string {
	return c.partnerID
}

func (c *Conversation) ConsumerID() string {
	return c.consumerID
}

func (c *Conversation) CreatedAt() time.Time {
	return c.createdAt
}
