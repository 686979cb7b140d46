package models

// ProfileModel is the user directory maintained by the identity provider.
type ProfileModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Email       string `gorm:"size:255;index"`
	DisplayName string `gorm:"size:100"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}
