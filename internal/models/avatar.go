package models

// AvatarBlob stores a profile photo when the database avatar backend is used.
type AvatarBlob struct {
	BaseModel
	UserID      string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	ContentType string `gorm:"size:100;not null" json:"contentType"`
	Data        []byte `gorm:"not null" json:"-"`
}
