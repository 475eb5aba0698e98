package models

import (
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItemStatus string

const (
	OrderItemAvailable  OrderItemStatus = "AVAILABLE"
	OrderItemOutOfStock OrderItemStatus = "OUT_OF_STOCK"
	OrderItemBackorder  OrderItemStatus = "BACKORDER"
)

// OrderItem is one line of a ProductOrder. It owns both the product_id and
// order_id columns; both references are required.
type OrderItem struct {
	ID         *int64           `gorm:"primaryKey;autoIncrement"    json:"id"`
	Quantity   *int             `gorm:"not null"                    json:"quantity"   validate:"required,gte=0"`
	TotalPrice *decimal.Decimal `gorm:"type:decimal(21,2);not null" json:"totalPrice" validate:"required,gte=0"`
	Status     OrderItemStatus  `gorm:"size:255;not null"           json:"status"     validate:"required,in=AVAILABLE,OUT_OF_STOCK,BACKORDER"`
	ProductID  *int64           `gorm:"not null;index"              json:"-"`
	Product    *Product         `gorm:"foreignKey:ProductID"        json:"product"`
	OrderID    *int64           `gorm:"not null;index"              json:"-"`
	Order      *ProductOrder    `gorm:"foreignKey:OrderID"          json:"order"`
}

func (OrderItem) TableName() string { return "order_item" }

func (i *OrderItem) GetID() *int64 { return i.ID }

func (i *OrderItem) Equal(other *OrderItem) bool {
	if i == other {
		return i != nil
	}
	if i == nil || other == nil {
		return false
	}
	return sameID(i.ID, other.ID)
}

// Validate requires both references to carry ids.
func (i OrderItem) Validate() map[string]string {
	errs := map[string]string{}
	if i.Product == nil || i.Product.ID == nil {
		errs["product"] = "The product field is required."
	}
	if i.Order == nil || i.Order.ID == nil {
		errs["order"] = "The order field is required."
	}
	return errs
}

// BeforeSave copies both references into their foreign-key columns.
func (i *OrderItem) BeforeSave(*gorm.DB) error {
	i.ProductID, i.OrderID = nil, nil
	if i.Product != nil {
		i.ProductID = i.Product.ID
	}
	if i.Order != nil {
		i.OrderID = i.Order.ID
	}
	return nil
}

func (i *OrderItem) LogValue() slog.Value {
	var qty any
	if i.Quantity != nil {
		qty = *i.Quantity
	}
	total := "<nil>"
	if i.TotalPrice != nil {
		total = i.TotalPrice.StringFixed(2)
	}
	return slog.GroupValue(
		slog.Any("id", idOrNil(i.ID)),
		slog.Any("quantity", qty),
		slog.String("totalPrice", total),
		slog.String("status", string(i.Status)),
	)
}
