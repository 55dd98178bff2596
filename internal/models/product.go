package models

import "time"

// Product represents a catalog product as served by the upstream product API.
type Product struct {
	ID          int       `json:"id" gorm:"primaryKey;autoIncrement:false" validate:"required,gt=0"`
	Title       string    `json:"title" gorm:"type:varchar(255)" validate:"required,max=255"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	Price       float64   `json:"price" validate:"gte=0"`
	Thumbnail   string    `json:"thumbnail" validate:"omitempty,url"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ProductPage is one page of the catalog, shaped like the upstream listing response.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// StockEntry is one row of the mirrored stock side-table.
type StockEntry struct {
	ProductID int `gorm:"primaryKey;autoIncrement:false"`
	Remaining int `gorm:"not null"`
	UpdatedAt time.Time
}
