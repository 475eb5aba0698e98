// Package services holds the entity services: business identity rules,
// transactions, the read-through cache and entity events on top of the
// repositories.
package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/kproduct/app/models"
	"github.com/shashiranjanraj/kproduct/app/repositories"
	"github.com/shashiranjanraj/kproduct/pkg/cache"
	"github.com/shashiranjanraj/kproduct/pkg/event"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"gorm.io/gorm"
)

// Entity names used in alert headers and events.
const (
	ProductEntity         = "kproductProduct"
	ProductCategoryEntity = "kproductProductCategory"
	ProductOrderEntity    = "kproductProductOrder"
	OrderItemEntity       = "kproductOrderItem"
)

// Services bundles one service per entity.
type Services struct {
	Products          *ProductService
	ProductCategories *ProductCategoryService
	ProductOrders     *ProductOrderService
	OrderItems        *OrderItemService
}

// New wires every service to db. store and events may be nil.
func New(db *gorm.DB, store *cache.Store, events *event.Dispatcher) *Services {
	if store == nil {
		store = cache.Disabled()
	}
	return &Services{
		Products:          NewProductService(db, store, events),
		ProductCategories: NewProductCategoryService(db, store, events),
		ProductOrders:     NewProductOrderService(db, store, events),
		OrderItems:        NewOrderItemService(db, store, events),
	}
}

// ─── Product ─────────────────────────────────────────────────────────────────

type ProductService struct {
	*crud[models.Product, *models.Product]
}

func NewProductService(db *gorm.DB, store *cache.Store, events *event.Dispatcher) *ProductService {
	return &ProductService{&crud[models.Product, *models.Product]{
		name:         "product",
		entityName:   ProductEntity,
		label:        "Product",
		db:           db,
		repo:         repositories.NewProductRepository(db),
		cache:        store,
		events:       events,
		dependents:   []string{"order-item"},
		references:   productReferences,
		beforeDelete: rejectIfReferenced("product_id"),
	}}
}

func productReferences(ctx context.Context, tx *gorm.DB, p *models.Product) (map[string]string, error) {
	missing := map[string]string{}
	if p.ProductCategory != nil && p.ProductCategory.ID != nil {
		ok, err := repositories.NewProductCategoryRepository(tx).ExistsByID(ctx, *p.ProductCategory.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing["productCategory"] = "The productCategory does not exist."
		}
	}
	return missing, nil
}

// ─── ProductCategory ─────────────────────────────────────────────────────────

type ProductCategoryService struct {
	*crud[models.ProductCategory, *models.ProductCategory]
}

func NewProductCategoryService(db *gorm.DB, store *cache.Store, events *event.Dispatcher) *ProductCategoryService {
	s := &ProductCategoryService{&crud[models.ProductCategory, *models.ProductCategory]{
		name:       "product-category",
		entityName: ProductCategoryEntity,
		label:      "ProductCategory",
		db:         db,
		repo:       repositories.NewProductCategoryRepository(db),
		cache:      store,
		events:     events,
		dependents: []string{"product", "order-item"},
	}}
	s.beforeDelete = func(ctx context.Context, tx *gorm.DB, id int64) error {
		n, err := repositories.DetachCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.WithCtx(ctx).Debug("detached products from ProductCategory", "id", id, "products", n)
		}
		return nil
	}
	return s
}

// FindAllUnpaged returns every category ordered by id.
func (s *ProductCategoryService) FindAllUnpaged(ctx context.Context) ([]*models.ProductCategory, error) {
	logger.WithCtx(ctx).Debug("Request to get all ProductCategories")
	return s.repo.FindAllUnpaged(ctx)
}

// ─── ProductOrder ────────────────────────────────────────────────────────────

type ProductOrderService struct {
	*crud[models.ProductOrder, *models.ProductOrder]
}

func NewProductOrderService(db *gorm.DB, store *cache.Store, events *event.Dispatcher) *ProductOrderService {
	return &ProductOrderService{&crud[models.ProductOrder, *models.ProductOrder]{
		name:         "product-order",
		entityName:   ProductOrderEntity,
		label:        "ProductOrder",
		db:           db,
		repo:         repositories.NewProductOrderRepository(db),
		cache:        store,
		events:       events,
		dependents:   []string{"order-item"},
		beforeDelete: rejectIfReferenced("order_id"),
	}}
}

// ─── OrderItem ───────────────────────────────────────────────────────────────

type OrderItemService struct {
	*crud[models.OrderItem, *models.OrderItem]
}

func NewOrderItemService(db *gorm.DB, store *cache.Store, events *event.Dispatcher) *OrderItemService {
	return &OrderItemService{&crud[models.OrderItem, *models.OrderItem]{
		name:       "order-item",
		entityName: OrderItemEntity,
		label:      "OrderItem",
		db:         db,
		repo:       repositories.NewOrderItemRepository(db),
		cache:      store,
		events:     events,
		references: orderItemReferences,
	}}
}

func orderItemReferences(ctx context.Context, tx *gorm.DB, i *models.OrderItem) (map[string]string, error) {
	missing := map[string]string{}
	if i.Product != nil && i.Product.ID != nil {
		ok, err := repositories.NewProductRepository(tx).ExistsByID(ctx, *i.Product.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing["product"] = "The product does not exist."
		}
	}
	if i.Order != nil && i.Order.ID != nil {
		ok, err := repositories.NewProductOrderRepository(tx).ExistsByID(ctx, *i.Order.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing["order"] = "The order does not exist."
		}
	}
	return missing, nil
}

// rejectIfReferenced fails a delete while order items still point at the row
// through column.
func rejectIfReferenced(column string) func(ctx context.Context, tx *gorm.DB, id int64) error {
	return func(ctx context.Context, tx *gorm.DB, id int64) error {
		n, err := repositories.NewOrderItemRepository(tx).Count(ctx, column+" = ?", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%d order items use %s %d: %w", n, column, id, ErrReferenced)
		}
		return nil
	}
}
