package models

import (
	"gorm.io/datatypes"
)

// MessageModel is one ledger entry. Timestamps are unix microseconds so the
// (created_at, id) cursor survives a round trip.
type MessageModel struct {
	ID             string         `gorm:"primaryKey;size:40"`
	ConversationID string         `gorm:"size:40;not null;index:idx_message_conversation_order,priority:1"`
	SenderID       string         `gorm:"size:64;not null"`
	Kind           string         `gorm:"size:10;not null"`
	EventType      string         `gorm:"size:40;not null;index"`
	Payload        datatypes.JSON `gorm:"type:json"`
	BodyText       string         `gorm:"type:text"`
	BodyHTML       string         `gorm:"type:text"`
	CreatedAt      int64          `gorm:"autoCreateTime:false;not null;index:idx_message_conversation_order,priority:2;index:idx_message_outbox,priority:2"`
	DispatchedAt   *int64         `gorm:"index:idx_message_outbox,priority:1"`

	// Relay retry bookkeeping, unix microseconds.
	DispatchAttempts int    `gorm:"not null;default:0"`
	NextAttemptAt    *int64 `gorm:"index"`
	DeadLetteredAt   *int64
}

func (MessageModel) TableName() string {
	return "market_messages"
}
