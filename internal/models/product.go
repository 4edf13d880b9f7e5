package models

import "time"

// Product represents a catalog item in the store.
//
// Price and StockQuantity are pointers so that a zero value can be told apart
// from an omitted field: both are mandatory, but 0 is a legal value for each.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"size:100;not null" validate:"required,max=100"`
	Description   string    `json:"description" gorm:"size:500;not null" validate:"required,max=500"`
	Price         *float64  `json:"price" gorm:"not null" validate:"required"`
	ImageURL      string    `json:"imageUrl" gorm:"size:255" validate:"omitempty,max=255"`
	Category      string    `json:"category" gorm:"not null;index" validate:"required"`
	Brand         string    `json:"brand"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	StockQuantity *int      `json:"stockQuantity" gorm:"not null" validate:"required"`
	DiscountPrice *float64  `json:"discountPrice"` // nil means the product is not discounted
	SKU           string    `json:"sku" gorm:"index"`
	CreatedAt     time.Time `json:"createdAt" gorm:"not null;index;<-:create"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Product) TableName() string {
	return "products"
}

// IsDiscounted reports whether a discount price is set.
func (p *Product) IsDiscounted() bool {
	return p.DiscountPrice != nil
}
