package models

import (
	"log/slog"
)

// ProductCategory groups products. Products is the inverse side of
// Product.ProductCategory; it is never serialised.
type ProductCategory struct {
	ID          *int64     `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string     `gorm:"size:255;not null"            json:"name"        validate:"required,max=255"`
	Description string     `gorm:"size:255"                     json:"description"`
	Products    []*Product `gorm:"foreignKey:ProductCategoryID" json:"-"`
}

func (ProductCategory) TableName() string { return "product_category" }

func (c *ProductCategory) GetID() *int64 { return c.ID }

func (c *ProductCategory) Equal(other *ProductCategory) bool {
	if c == other {
		return c != nil
	}
	if c == nil || other == nil {
		return false
	}
	return sameID(c.ID, other.ID)
}

// AddProduct links product to c on both sides.
func (c *ProductCategory) AddProduct(product *Product) *ProductCategory {
	if !containsProduct(c.Products, product) {
		c.Products = append(c.Products, product)
	}
	product.ProductCategory = c
	return c
}

// RemoveProduct unlinks product from c on both sides.
func (c *ProductCategory) RemoveProduct(product *Product) *ProductCategory {
	kept := c.Products[:0]
	for _, p := range c.Products {
		if p != product && !p.Equal(product) {
			kept = append(kept, p)
		}
	}
	c.Products = kept
	product.ProductCategory = nil
	return c
}

func containsProduct(set []*Product, product *Product) bool {
	for _, p := range set {
		if p == product || p.Equal(product) {
			return true
		}
	}
	return false
}

func (c *ProductCategory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("id", idOrNil(c.ID)),
		slog.String("name", c.Name),
		slog.String("description", c.Description),
	)
}
