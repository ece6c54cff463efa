package models

import "time"

// Advice is a farming tip published by an advisor.
type Advice struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title    string `json:"title" gorm:"type:varchar(255);not null"`
	Category string `json:"category" gorm:"type:varchar(100);not null"`
	Content  string `json:"content" gorm:"type:text;not null"` // HTML from the rich-text editor
	Image    string `json:"image" gorm:"type:varchar(1024)"`

	AuthorID string `json:"authorId" gorm:"type:varchar(36);index;not null"`
	Author   *User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`

	Date      time.Time `json:"date" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the singular table name used by the original schema.
func (Advice) TableName() string {
	return "advice"
}
