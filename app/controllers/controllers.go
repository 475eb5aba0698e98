package controllers

import (
	"github.com/shashiranjanraj/kproduct/app/models"
	"github.com/shashiranjanraj/kproduct/app/services"
	"github.com/shashiranjanraj/kproduct/pkg/ctx"
)

type ProductController struct {
	*resource[models.Product, *models.Product]
}

func NewProductController(s *services.ProductService) *ProductController {
	return &ProductController{&resource[models.Product, *models.Product]{
		svc:        s,
		entityName: services.ProductEntity,
		label:      "Product",
		path:       "/api/products",
	}}
}

type ProductCategoryController struct {
	*resource[models.ProductCategory, *models.ProductCategory]
	categories *services.ProductCategoryService
}

func NewProductCategoryController(s *services.ProductCategoryService) *ProductCategoryController {
	return &ProductCategoryController{
		resource: &resource[models.ProductCategory, *models.ProductCategory]{
			svc:        s,
			entityName: services.ProductCategoryEntity,
			label:      "ProductCategory",
			path:       "/api/product-categories",
		},
		categories: s,
	}
}

// List returns every category as a plain array, without pagination.
func (pc *ProductCategoryController) List(c *ctx.Context) {
	c.Logger().Debug("REST request to get all ProductCategories")

	all, err := pc.categories.FindAllUnpaged(c.Context())
	if err != nil {
		pc.fail(c, err)
		return
	}
	c.OK(all)
}

type ProductOrderController struct {
	*resource[models.ProductOrder, *models.ProductOrder]
}

func NewProductOrderController(s *services.ProductOrderService) *ProductOrderController {
	return &ProductOrderController{&resource[models.ProductOrder, *models.ProductOrder]{
		svc:        s,
		entityName: services.ProductOrderEntity,
		label:      "ProductOrder",
		path:       "/api/product-orders",
	}}
}

type OrderItemController struct {
	*resource[models.OrderItem, *models.OrderItem]
}

func NewOrderItemController(s *services.OrderItemService) *OrderItemController {
	return &OrderItemController{&resource[models.OrderItem, *models.OrderItem]{
		svc:        s,
		entityName: services.OrderItemEntity,
		label:      "OrderItem",
		path:       "/api/order-items",
	}}
}
