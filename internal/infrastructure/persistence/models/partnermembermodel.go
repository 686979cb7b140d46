package models

// PartnerMemberRoleOwner marks the members allowed to act for a partner.
const PartnerMemberRoleOwner = "owner"

type PartnerMemberModel struct {
	PartnerID string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"primaryKey;size:64;index"`
	Role      string `gorm:"size:20;not null"`
	CreatedAt int64  `gorm:"autoCreateTime:milli;not null"`
}

func (PartnerMemberModel) TableName() string {
	return "market_partner_members"
}
