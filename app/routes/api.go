package routes

import (
	"github.com/shashiranjanraj/kproduct/app/controllers"
	"github.com/shashiranjanraj/kproduct/app/services"
	"github.com/shashiranjanraj/kproduct/pkg/ctx"
	"github.com/shashiranjanraj/kproduct/pkg/router"
)

type crudHandlers interface {
	Create(c *ctx.Context)
	Update(c *ctx.Context)
	List(c *ctx.Context)
	Show(c *ctx.Context)
	Delete(c *ctx.Context)
}

// RegisterAPI mounts the entity resources under /api. middlewares guard the
// whole group (authentication when enabled).
func RegisterAPI(r *router.Router, svc *services.Services, middlewares ...router.Middleware) {
	api := r.Group("/api", middlewares...)

	resource(api, "/products", "products", controllers.NewProductController(svc.Products))
	resource(api, "/product-categories", "product-categories", controllers.NewProductCategoryController(svc.ProductCategories))
	resource(api, "/product-orders", "product-orders", controllers.NewProductOrderController(svc.ProductOrders))
	resource(api, "/order-items", "order-items", controllers.NewOrderItemController(svc.OrderItems))
}

func resource(g *router.Group, path, name string, h crudHandlers) {
	g.Post(path, name+".create", ctx.Wrap(h.Create))
	g.Put(path, name+".update", ctx.Wrap(h.Update))
	g.Get(path, name+".index", ctx.Wrap(h.List))
	g.Get(path+"/{id}", name+".show", ctx.Wrap(h.Show))
	g.Delete(path+"/{id}", name+".destroy", ctx.Wrap(h.Delete))
}
