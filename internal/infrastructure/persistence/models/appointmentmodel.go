package models

type AppointmentModel struct {
	ID             string `gorm:"primaryKey;size:40"`
	RequestID      string `gorm:"size:40;not null;index:idx_appointment_request_status,priority:1"`
	ConversationID string `gorm:"size:40;not null"`
	PartnerID      string `gorm:"size:64;not null"`
	CreatorID      string `gorm:"size:64;not null"`
	Kind           string `gorm:"size:10;not null"`
	StartAt        int64  `gorm:"not null"`
	DurationMin    int    `gorm:"not null"`
	Location       string `gorm:"size:200"`
	VideoURL       string `gorm:"size:500"`
	Phone          string `gorm:"size:50"`
	Note           string `gorm:"type:text"`
	Status         string `gorm:"size:20;not null;index:idx_appointment_request_status,priority:2"`
	CreatedAt      int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt      int64  `gorm:"autoUpdateTime:milli;not null"`
}

func (AppointmentModel) TableName() string {
	return "market_appointments"
}
