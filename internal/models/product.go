package models

import "time"

// Product is a produce listing owned by a single seller.
type Product struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string `json:"name" gorm:"type:varchar(255);not null"`
	Category    string `json:"category" gorm:"type:varchar(100);index;not null"`
	Price       string `json:"price" gorm:"type:varchar(100);not null"` // free text, e.g. "500 RWF/kg"
	Quantity    string `json:"quantity" gorm:"type:varchar(100)"`
	Location    string `json:"location" gorm:"type:varchar(255)"`
	Description string `json:"description" gorm:"type:text"`
	Image       string `json:"image" gorm:"type:varchar(1024)"` // upload path or external URL
	WhatsApp    string `json:"whatsapp" gorm:"column:whatsapp;type:varchar(255)"`

	SellerID string `json:"sellerId" gorm:"type:varchar(36);index;not null"`
	Seller   *User  `json:"-" gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
