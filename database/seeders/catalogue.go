package seeders

import (
	"time"

	"github.com/shashiranjanraj/kproduct/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func init() {
	Register("product_categories", SeedProductCategories)
	Register("products", SeedProducts)
	Register("product_orders", SeedProductOrders)
	Register("order_items", SeedOrderItems)
}

func empty(db *gorm.DB, model any) (bool, error) {
	var n int64
	err := db.Model(model).Count(&n).Error
	return n == 0, err
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// SeedProductCategories inserts the base categories when the table is empty.
func SeedProductCategories(db *gorm.DB) error {
	if ok, err := empty(db, &models.ProductCategory{}); err != nil || !ok {
		return err
	}
	categories := []*models.ProductCategory{
		{Name: "Shirts", Description: "Tees, polos and button-downs"},
		{Name: "Outerwear", Description: "Jackets and coats"},
		{Name: "Accessories"},
	}
	return db.Omit(clause.Associations).Create(&categories).Error
}

// SeedProducts inserts a few products spread across the categories.
func SeedProducts(db *gorm.DB) error {
	if ok, err := empty(db, &models.Product{}); err != nil || !ok {
		return err
	}

	var categories []*models.ProductCategory
	if err := db.Order("id").Find(&categories).Error; err != nil {
		return err
	}
	category := func(i int) *models.ProductCategory {
		if i < len(categories) {
			return categories[i]
		}
		return nil
	}

	products := []*models.Product{
		{Name: "Tee", Description: "Plain cotton tee", Price: money("19.99"), Size: models.SizeM, ProductCategory: category(0)},
		{Name: "Polo", Price: money("34.50"), Size: models.SizeL, ProductCategory: category(0)},
		{Name: "Rain Jacket", Price: money("129.00"), Size: models.SizeXL, ProductCategory: category(1)},
		{Name: "Cap", Price: money("12.00"), Size: models.SizeS, ProductCategory: category(2)},
		{Name: "Sample", Price: money("0.00"), Size: models.SizeS},
	}
	return db.Omit(clause.Associations).Create(&products).Error
}

// SeedProductOrders inserts one order per status.
func SeedProductOrders(db *gorm.DB) error {
	if ok, err := empty(db, &models.ProductOrder{}); err != nil || !ok {
		return err
	}

	placed := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	invoice := int64(1001)
	orders := []*models.ProductOrder{
		{PlacedDate: &placed, Status: models.OrderStatusCompleted, Code: "ORD-0001", InvoiceID: &invoice, Customer: "alice"},
		{PlacedDate: &placed, Status: models.OrderStatusPending, Code: "ORD-0002", Customer: "bob"},
		{PlacedDate: &placed, Status: models.OrderStatusCancelled, Code: "ORD-0003", Customer: "carol"},
	}
	return db.Omit(clause.Associations).Create(&orders).Error
}

// SeedOrderItems attaches the first products to the first order.
func SeedOrderItems(db *gorm.DB) error {
	if ok, err := empty(db, &models.OrderItem{}); err != nil || !ok {
		return err
	}

	var products []*models.Product
	if err := db.Order("id").Limit(2).Find(&products).Error; err != nil {
		return err
	}
	var order models.ProductOrder
	if err := db.Order("id").First(&order).Error; err != nil {
		return err
	}

	items := make([]*models.OrderItem, 0, len(products))
	for i, p := range products {
		qty := i + 1
		total := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		items = append(items, &models.OrderItem{
			Quantity:   &qty,
			TotalPrice: &total,
			Status:     models.OrderItemAvailable,
			Product:    p,
			Order:      &order,
		})
	}
	if len(items) == 0 {
		return nil
	}
	return db.Omit(clause.Associations).Create(&items).Error
}
