package models

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Size is the garment size of a Product, stored as its name.
type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

// Product is a catalogue item. It optionally belongs to a ProductCategory and
// is the owning side of that link (product_category_id).
type Product struct {
	ID                *int64           `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name              string           `gorm:"size:255;not null"            json:"name"             validate:"required,max=255"`
	Description       string           `gorm:"size:255"                     json:"description"`
	Price             *decimal.Decimal `gorm:"type:decimal(21,2);not null"  json:"price"            validate:"required,gte=0"`
	Size              Size             `gorm:"size:255;not null"            json:"size"             validate:"required,in=S,M,L,XL"`
	Image             []byte           `json:"image"`
	ImageContentType  string           `gorm:"size:255"                     json:"imageContentType"`
	ProductCategoryID *int64           `gorm:"index"                        json:"-"`
	ProductCategory   *ProductCategory `gorm:"foreignKey:ProductCategoryID" json:"productCategory"`
}

func (Product) TableName() string { return "product" }

func (p *Product) GetID() *int64 { return p.ID }

// Equal reports identity equality: both ids set and equal.
func (p *Product) Equal(other *Product) bool {
	if p == other {
		return p != nil
	}
	if p == nil || other == nil {
		return false
	}
	return sameID(p.ID, other.ID)
}

// Validate checks that a referenced category carries an id.
func (p Product) Validate() map[string]string {
	if p.ProductCategory != nil && p.ProductCategory.ID == nil {
		return map[string]string{"productCategory": "The productCategory must reference an existing category by id."}
	}
	return nil
}

// BeforeSave copies the reference into the foreign-key column.
func (p *Product) BeforeSave(*gorm.DB) error {
	if p.ProductCategory != nil {
		p.ProductCategoryID = p.ProductCategory.ID
	} else {
		p.ProductCategoryID = nil
	}
	return nil
}

// LogValue keeps the image payload out of log lines.
func (p *Product) LogValue() slog.Value {
	price := "<nil>"
	if p.Price != nil {
		price = p.Price.StringFixed(2)
	}
	return slog.GroupValue(
		slog.Any("id", idOrNil(p.ID)),
		slog.String("name", p.Name),
		slog.String("description", p.Description),
		slog.String("price", price),
		slog.String("size", string(p.Size)),
		slog.String("image", fmt.Sprintf("%d bytes", len(p.Image))),
		slog.String("imageContentType", p.ImageContentType),
	)
}
