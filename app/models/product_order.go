package models

import (
	"log/slog"
	"time"
)

// OrderStatus is the lifecycle state of a ProductOrder. Values are stored
// as-is; no transitions are enforced.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ProductOrder is a customer order. OrderItems is the inverse side of
// OrderItem.Order.
type ProductOrder struct {
	ID         *int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	PlacedDate *time.Time   `gorm:"not null"                 json:"placedDate" validate:"required"`
	Status     OrderStatus  `gorm:"size:255;not null"        json:"status"     validate:"required,in=PENDING,COMPLETED,CANCELLED"`
	Code       string       `gorm:"size:255;not null"        json:"code"       validate:"required,max=255"`
	InvoiceID  *int64       `json:"invoiceId"`
	Customer   string       `gorm:"size:255;not null"        json:"customer"   validate:"required,max=255"`
	OrderItems []*OrderItem `gorm:"foreignKey:OrderID"       json:"-"`
}

func (ProductOrder) TableName() string { return "product_order" }

func (o *ProductOrder) GetID() *int64 { return o.ID }

func (o *ProductOrder) Equal(other *ProductOrder) bool {
	if o == other {
		return o != nil
	}
	if o == nil || other == nil {
		return false
	}
	return sameID(o.ID, other.ID)
}

// AddOrderItem links item to o on both sides.
func (o *ProductOrder) AddOrderItem(item *OrderItem) *ProductOrder {
	found := false
	for _, it := range o.OrderItems {
		if it == item || it.Equal(item) {
			found = true
			break
		}
	}
	if !found {
		o.OrderItems = append(o.OrderItems, item)
	}
	item.Order = o
	return o
}

// RemoveOrderItem unlinks item from o on both sides.
func (o *ProductOrder) RemoveOrderItem(item *OrderItem) *ProductOrder {
	kept := o.OrderItems[:0]
	for _, it := range o.OrderItems {
		if it != item && !it.Equal(item) {
			kept = append(kept, it)
		}
	}
	o.OrderItems = kept
	item.Order = nil
	return o
}

func (o *ProductOrder) LogValue() slog.Value {
	var placed string
	if o.PlacedDate != nil {
		placed = o.PlacedDate.UTC().Format(time.RFC3339)
	}
	return slog.GroupValue(
		slog.Any("id", idOrNil(o.ID)),
		slog.String("placedDate", placed),
		slog.String("status", string(o.Status)),
		slog.String("code", o.Code),
		slog.Any("invoiceId", idOrNil(o.InvoiceID)),
		slog.String("customer", o.Customer),
	)
}
