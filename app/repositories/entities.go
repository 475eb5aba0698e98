package repositories

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/kproduct/app/models"
	"gorm.io/gorm"
)

type (
	ProductRepository         = Repository[models.Product]
	ProductCategoryRepository = Repository[models.ProductCategory]
	ProductOrderRepository    = Repository[models.ProductOrder]
	OrderItemRepository       = Repository[models.OrderItem]
)

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return New[models.Product](db, "ProductCategory")
}

func NewProductCategoryRepository(db *gorm.DB) *ProductCategoryRepository {
	return New[models.ProductCategory](db)
}

func NewProductOrderRepository(db *gorm.DB) *ProductOrderRepository {
	return New[models.ProductOrder](db)
}

func NewOrderItemRepository(db *gorm.DB) *OrderItemRepository {
	return New[models.OrderItem](db, "Product.ProductCategory", "Order")
}

// DetachCategory clears product_category_id on every product of the
// category. Returns the number of products touched.
func DetachCategory(ctx context.Context, db *gorm.DB, categoryID int64) (int64, error) {
	result := db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_category_id = ?", categoryID).
		UpdateColumn("product_category_id", nil)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to detach products from category %d: %w", categoryID, result.Error)
	}
	return result.RowsAffected, nil
}
