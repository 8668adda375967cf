package models

import "time"

type Order struct {
	ID        int         `gorm:"primary_key" json:"id"`
	ProductId int         `gorm:"index;not null" json:"product_id"`
	Quantity  int         `gorm:"not null" json:"quantity"`
	DueDate   time.Time   `gorm:"type:date;not null" json:"due_date"`
	Status    OrderStatus `gorm:"type:enum('pending','in_progress','completed','cancelled');default:'pending';not null" json:"status"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
