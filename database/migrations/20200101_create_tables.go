package migrations

import (
	"github.com/shashiranjanraj/kproduct/app/models"
	"github.com/shashiranjanraj/kproduct/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20200101000000_create_product_category_table", &CreateProductCategoryTable{})
	migration.Register("20200101000001_create_product_table", &CreateProductTable{})
	migration.Register("20200101000002_create_product_order_table", &CreateProductOrderTable{})
	migration.Register("20200101000003_create_order_item_table", &CreateOrderItemTable{})
}

// -------- product_category --------

type CreateProductCategoryTable struct{}

func (m *CreateProductCategoryTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(&models.ProductCategory{})
}

func (m *CreateProductCategoryTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_category")
}

// -------- product --------

type CreateProductTable struct{}

// Up creates product with its nullable product_category_id foreign key. The
// constraint comes from the belongs-to field.
func (m *CreateProductTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(&models.Product{})
}

func (m *CreateProductTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product")
}

// -------- product_order --------

type CreateProductOrderTable struct{}

func (m *CreateProductOrderTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(&models.ProductOrder{})
}

func (m *CreateProductOrderTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_order")
}

// -------- order_item --------

type CreateOrderItemTable struct{}

func (m *CreateOrderItemTable) Up(db *gorm.DB) error {
	return db.Migrator().CreateTable(&models.OrderItem{})
}

func (m *CreateOrderItemTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_item")
}
