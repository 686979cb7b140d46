package models

type ConversationModel struct {
	ID         string `gorm:"primaryKey;size:40"`
	RequestID  string `gorm:"size:40;not null;uniqueIndex:uk_conversation_request_partner,priority:1"`
	PartnerID  string `gorm:"size:64;not null;uniqueIndex:uk_conversation_request_partner,priority:2"`
	ConsumerID string `gorm:"size:64;not null;index"`
	CreatedAt  int64  `gorm:"autoCreateTime:milli;not null"`
}

func (ConversationModel) TableName() string {
	return "market_conversations"
}
