// Package controllers maps the REST resources onto the entity services.
package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/kproduct/app/repositories"
	"github.com/shashiranjanraj/kproduct/app/services"
	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/pkg/ctx"
	"github.com/shashiranjanraj/kproduct/pkg/response"
)

// entityService is the contract every entity service satisfies.
type entityService[T any] interface {
	Save(ctx context.Context, entity *T) (*T, error)
	FindAll(ctx context.Context, p repositories.Pageable) (repositories.Page[*T], error)
	FindOne(ctx context.Context, id int64) (*T, bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type identified[T any] interface {
	*T
	GetID() *int64
}

// resource implements the five REST operations for one entity.
type resource[T any, PT identified[T]] struct {
	svc        entityService[T]
	entityName string
	label      string
	path       string
}

func (rs *resource[T, PT]) Create(c *ctx.Context) {
	var body T
	if !c.BindJSON(&body) {
		return
	}
	c.Logger().Debug("REST request to save "+rs.label, "entity", PT(&body))

	if PT(&body).GetID() != nil {
		c.BadRequestAlert(rs.entityName, "idexists", "A new "+lowerFirst(rs.label)+" cannot already have an ID")
		return
	}

	saved, err := rs.svc.Save(c.Context(), &body)
	if err != nil {
		rs.fail(c, err)
		return
	}

	id := *PT(saved).GetID()
	response.CreationAlert(c.W.Header(), rs.entityName, strconv.FormatInt(id, 10))
	c.Created(location(rs.path, id), saved)
}

func (rs *resource[T, PT]) Update(c *ctx.Context) {
	var body T
	if !c.BindJSON(&body) {
		return
	}
	c.Logger().Debug("REST request to update "+rs.label, "entity", PT(&body))

	id := PT(&body).GetID()
	if id == nil {
		c.BadRequestAlert(rs.entityName, "idnull", "Invalid id")
		return
	}

	exists, err := rs.svc.Exists(c.Context(), *id)
	if err != nil {
		rs.fail(c, err)
		return
	}
	if !exists {
		c.NotFound()
		return
	}

	saved, err := rs.svc.Save(c.Context(), &body)
	if err != nil {
		rs.fail(c, err)
		return
	}

	response.UpdateAlert(c.W.Header(), rs.entityName, strconv.FormatInt(*id, 10))
	c.OK(saved)
}

func (rs *resource[T, PT]) List(c *ctx.Context) {
	p, ok := pageable(c)
	if !ok {
		return
	}
	c.Logger().Debug("REST request to get a page of "+rs.label, "page", p.Page, "size", p.Size)

	page, err := rs.svc.FindAll(c.Context(), p)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.Paginated(page.Content, page.Number, page.Size, page.TotalElements)
}

func (rs *resource[T, PT]) Show(c *ctx.Context) {
	id, ok := c.ParamInt64("id")
	if !ok {
		return
	}
	c.Logger().Debug("REST request to get "+rs.label, "id", id)

	found, ok, err := rs.svc.FindOne(c.Context(), id)
	if err != nil {
		rs.fail(c, err)
		return
	}
	if !ok {
		c.NotFound()
		return
	}
	c.OK(found)
}

func (rs *resource[T, PT]) Delete(c *ctx.Context) {
	id, ok := c.ParamInt64("id")
	if !ok {
		return
	}
	c.Logger().Debug("REST request to delete "+rs.label, "id", id)

	if err := rs.svc.Delete(c.Context(), id); err != nil {
		rs.fail(c, err)
		return
	}
	response.DeletionAlert(c.W.Header(), rs.entityName, strconv.FormatInt(id, 10))
	c.NoContent()
}

// fail maps a service error to its HTTP response.
func (rs *resource[T, PT]) fail(c *ctx.Context, err error) {
	var (
		verr    *services.ValidationError
		sortErr *repositories.SortError
	)
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.As(err, &sortErr):
		c.ValidationError(map[string]string{"sort": sortErr.Error()})
	case errors.Is(err, services.ErrReferenced):
		c.Conflict(rs.entityName, "The "+lowerFirst(rs.label)+" is still referenced")
	case errors.Is(err, services.ErrNotFound):
		c.NotFound()
	default:
		c.Logger().Error("request failed", "entity", rs.label, "error", err)
		c.InternalError()
	}
}

// pageable reads page, size and sort from the query string. It writes a 400
// and returns false when they do not parse.
func pageable(c *ctx.Context) (repositories.Pageable, bool) {
	errs := map[string]string{}
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		errs["page"] = "The page must be an integer."
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(config.DefaultPageSize())))
	if err != nil {
		errs["size"] = "The size must be an integer."
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return repositories.Pageable{}, false
	}

	p, err := repositories.NewPageable(page, size, config.MaxPageSize(), c.QueryAll("sort"))
	if err != nil {
		c.ValidationError(map[string]string{"sort": err.Error()})
		return repositories.Pageable{}, false
	}
	return p, true
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// location builds the canonical URL of one entity.
func location(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
