package models

type OrderModel struct {
	ID             string `gorm:"primaryKey;size:40"`
	RequestID      string `gorm:"size:40;not null;index"`
	ConversationID string `gorm:"size:40;not null"`
	PartnerID      string `gorm:"size:64;not null;index"`
	IssuedBy       string `gorm:"size:64;not null"`
	Title          string `gorm:"size:200;not null"`
	NetCents       int64  `gorm:"not null"`
	TaxRateBP      int64  `gorm:"column:tax_rate_bp;not null"`
	DiscountType   string `gorm:"size:10;not null;default:none"`
	DiscountValue  int64  `gorm:"not null;default:0"`
	DiscountCents  int64  `gorm:"not null;default:0"`
	TaxCents       int64  `gorm:"not null"`
	GrossCents     int64  `gorm:"not null"`
	Status         string `gorm:"size:20;not null;index"`
	CreatedAt      int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt      int64  `gorm:"autoUpdateTime:milli;not null"`
	DecidedAt      *int64
}

func (OrderModel) TableName() string {
	return "market_orders"
}
