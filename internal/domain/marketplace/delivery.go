package marketplace

import "time"

// Delivery is one ledger entry handed to the outbox relay's subscribers.
type Delivery struct {
	Message      *Message
	Conversation *Conversation
}

func (d Delivery) GetAggregateID() string {
	return d.Conversation.ID()
}

func (d Delivery) GetEventType() string {
	return string(d.Message.Event().Type())
}

func (d Delivery) GetOccurredAt() time.Time {
	return d.Message.CreatedAt()
}

// NotifiesConsumer reports whether the consumer is the counterpart to notify;
// otherwise the partner side is.
func (d Delivery) NotifiesConsumer() bool {
	return d.Message.SenderID() != d.Conversation.ConsumerID()
}
