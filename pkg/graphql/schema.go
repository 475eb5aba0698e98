// Package graphql exposes a read-only GraphQL view of the catalogue on top
// of the entity services. Every lookup goes through the services, so reads
// share the REST API's cache.
package graphql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/kproduct/app/models"
	"github.com/shashiranjanraj/kproduct/app/repositories"
	"github.com/shashiranjanraj/kproduct/app/services"
	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shopspring/decimal"
)

// NewSchema creates a new GraphQL schema from a provided RootQuery
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Build returns the catalogue schema resolved against svc.
func Build(svc *services.Services) (graphql.Schema, error) {
	category := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductCategory",
		Fields: graphql.Fields{
			"id":          {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(c *models.ProductCategory) any { return deref(c.ID) })},
			"name":        {Type: graphql.String, Resolve: field(func(c *models.ProductCategory) any { return c.Name })},
			"description": {Type: graphql.String, Resolve: field(func(c *models.ProductCategory) any { return c.Description })},
		},
	})

	product := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":               {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(p *models.Product) any { return deref(p.ID) })},
			"name":             {Type: graphql.String, Resolve: field(func(p *models.Product) any { return p.Name })},
			"description":      {Type: graphql.String, Resolve: field(func(p *models.Product) any { return p.Description })},
			"price":            {Type: graphql.Float, Resolve: field(func(p *models.Product) any { return money(p.Price) })},
			"size":             {Type: graphql.String, Resolve: field(func(p *models.Product) any { return string(p.Size) })},
			"imageContentType": {Type: graphql.String, Resolve: field(func(p *models.Product) any { return p.ImageContentType })},
			"productCategory": {Type: category, Resolve: field(func(p *models.Product) any {
				if p.ProductCategory == nil {
					return nil
				}
				return p.ProductCategory
			})},
		},
	})

	order := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductOrder",
		Fields: graphql.Fields{
			"id": {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(o *models.ProductOrder) any { return deref(o.ID) })},
			"placedDate": {Type: graphql.String, Resolve: field(func(o *models.ProductOrder) any {
				if o.PlacedDate == nil {
					return nil
				}
				return o.PlacedDate.UTC().Format(time.RFC3339)
			})},
			"status":    {Type: graphql.String, Resolve: field(func(o *models.ProductOrder) any { return string(o.Status) })},
			"code":      {Type: graphql.String, Resolve: field(func(o *models.ProductOrder) any { return o.Code })},
			"invoiceId": {Type: graphql.ID, Resolve: field(func(o *models.ProductOrder) any { return deref(o.InvoiceID) })},
			"customer":  {Type: graphql.String, Resolve: field(func(o *models.ProductOrder) any { return o.Customer })},
		},
	})

	item := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.Fields{
			"id":         {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(i *models.OrderItem) any { return deref(i.ID) })},
			"quantity":   {Type: graphql.Int, Resolve: field(func(i *models.OrderItem) any { return derefInt(i.Quantity) })},
			"totalPrice": {Type: graphql.Float, Resolve: field(func(i *models.OrderItem) any { return money(i.TotalPrice) })},
			"status":     {Type: graphql.String, Resolve: field(func(i *models.OrderItem) any { return string(i.Status) })},
			"product": {Type: product, Resolve: field(func(i *models.OrderItem) any {
				if i.Product == nil {
					return nil
				}
				return i.Product
			})},
			"order": {Type: order, Resolve: field(func(i *models.OrderItem) any {
				if i.Order == nil {
					return nil
				}
				return i.Order
			})},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"product":         byID(product, svc.Products.FindOne),
			"products":        paged("ProductPage", product, svc.Products.FindAll),
			"productCategory": byID(category, svc.ProductCategories.FindOne),
			"productCategories": {
				Type: graphql.NewList(category),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ProductCategories.FindAllUnpaged(p.Context)
				},
			},
			"productOrder":  byID(order, svc.ProductOrders.FindOne),
			"productOrders": paged("ProductOrderPage", order, svc.ProductOrders.FindAll),
			"orderItem":     byID(item, svc.OrderItems.FindOne),
			"orderItems":    paged("OrderItemPage", item, svc.OrderItems.FindAll),
		},
	})

	return NewSchema(query)
}

// field adapts a typed accessor to a resolver over *T sources.
func field[T any](get func(*T) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(*T)
		if !ok || src == nil {
			return nil, nil
		}
		return get(src), nil
	}
}

func byID[T any](typ *graphql.Object, find func(context.Context, int64) (*T, bool, error)) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := strconv.ParseInt(fmt.Sprint(p.Args["id"]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q", p.Args["id"])
			}
			found, ok, err := find(p.Context, id)
			if err != nil || !ok {
				return nil, err
			}
			return found, nil
		},
	}
}

type page struct {
	content       []any
	number, size  int
	totalElements int64
	totalPages    int
}

func paged[T any](name string, typ *graphql.Object, findAll func(context.Context, repositories.Pageable) (repositories.Page[*T], error)) *graphql.Field {
	pageType := graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"content":       {Type: graphql.NewList(typ), Resolve: field(func(p *page) any { return p.content })},
			"number":        {Type: graphql.Int, Resolve: field(func(p *page) any { return p.number })},
			"size":          {Type: graphql.Int, Resolve: field(func(p *page) any { return p.size })},
			"totalElements": {Type: graphql.Int, Resolve: field(func(p *page) any { return int(p.totalElements) })},
			"totalPages":    {Type: graphql.Int, Resolve: field(func(p *page) any { return p.totalPages })},
		},
	})

	return &graphql.Field{
		Type: pageType,
		Args: graphql.FieldConfigArgument{
			"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
			"size": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: config.DefaultPageSize()},
			"sort": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			number, _ := p.Args["page"].(int)
			size, _ := p.Args["size"].(int)
			var sort []string
			if raw, ok := p.Args["sort"].([]interface{}); ok {
				for _, s := range raw {
					sort = append(sort, fmt.Sprint(s))
				}
			}

			pageable, err := repositories.NewPageable(number, size, config.MaxPageSize(), sort)
			if err != nil {
				return nil, err
			}
			res, err := findAll(p.Context, pageable)
			if err != nil {
				return nil, err
			}

			content := make([]any, len(res.Content))
			for i, e := range res.Content {
				content[i] = e
			}
			return &page{
				content:       content,
				number:        res.Number,
				size:          res.Size,
				totalElements: res.TotalElements,
				totalPages:    res.TotalPages(),
			}, nil
		},
	}
}

func deref(id *int64) any {
	if id == nil {
		return nil
	}
	return strconv.FormatInt(*id, 10)
}

func derefInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func money(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.InexactFloat64()
}
