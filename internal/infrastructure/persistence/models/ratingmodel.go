package models

type RatingModel struct {
	ID          string `gorm:"primaryKey;size:40"`
	PartnerID   string `gorm:"size:64;not null;index"`
	RequestID   string `gorm:"size:40;not null;uniqueIndex:uk_rating_request_consumer,priority:1"`
	ConsumerID  string `gorm:"size:64;not null;uniqueIndex:uk_rating_request_consumer,priority:2"`
	Stars       int    `gorm:"not null"`
	Text        string `gorm:"type:text"`
	DisplayName string `gorm:"size:100"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli;not null;index"`
}

func (RatingModel) TableName() string {
	return "market_partner_ratings"
}
