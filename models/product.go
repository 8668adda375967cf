package models

import "time"

type Product struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductVersion is one manufacturable configuration of a product.
// Step code namespaces are per-version.
type ProductVersion struct {
	ID        int       `gorm:"primary_key" json:"id"`
	ProductId int       `gorm:"uniqueIndex:idx_product_version;not null" json:"product_id"`
	Name      string    `gorm:"size:50" json:"name"`
	Number    int       `gorm:"uniqueIndex:idx_product_version;not null" json:"number"`
	IsDefault *bool     `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
