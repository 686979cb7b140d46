package models

type ApplicationModel struct {
	ID          string `gorm:"primaryKey;size:40"`
	RequestID   string `gorm:"size:40;not null;uniqueIndex:uk_application_request_partner,priority:1"`
	PartnerID   string `gorm:"size:64;not null;uniqueIndex:uk_application_request_partner,priority:2;index"`
	SubmittedBy string `gorm:"size:64;not null"`
	Status      string `gorm:"size:20;not null;index"`
	// AcceptedRequestID is set only while accepted, so the unique index
	// admits one accepted application per request.
	AcceptedRequestID *string `gorm:"size:40;uniqueIndex:uk_application_accepted_request"`
	MessageText       string  `gorm:"type:text"`
	MessageHTML       string  `gorm:"type:text"`
	CreatedAt         int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt         int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (ApplicationModel) TableName() string {
	return "market_applications"
}
