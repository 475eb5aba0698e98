// Package ctx provides the request context kproduct handlers receive.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (pc *ProductController) Show(c *ctx.Context) {
//	    id, ok := c.ParamInt64("id")
//	    ...
//	    c.OK(product)
//	}
//
//	r.Get("/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/kproduct/pkg/bind"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"github.com/shashiranjanraj/kproduct/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int // 0 = not written yet
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamInt64 parses a path parameter as an int64 id. On failure it writes a
// 400 and returns false.
func (c *Context) ParamInt64(key string) (int64, bool) {
	raw := c.Param(key)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.Error(http.StatusBadRequest, fmt.Sprintf("invalid %s %q", key, raw))
		return 0, false
	}
	return n, true
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// QueryAll returns every value of a repeated query parameter.
func (c *Context) QueryAll(key string) []string {
	return c.R.URL.Query()[key]
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// ─── Per-request store ────────────────────────────────────────────────────────

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// GetString returns a string value from the store, or "" if absent.
func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation. It writes a
// 400 and returns false on malformed JSON or validation failure.
//
//	var p models.Product
//	if !c.BindJSON(&p) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// JSON writes v with the given status code.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

func (c *Context) OK(v any) {
	c.status = http.StatusOK
	response.OK(c.W, v)
}

// Created sends a 201 with Location.
func (c *Context) Created(location string, v any) {
	c.status = http.StatusCreated
	response.Created(c.W, location, v)
}

// NoContent sends a 204.
func (c *Context) NoContent() {
	c.status = http.StatusNoContent
	response.NoContent(c.W)
}

// Paginated sends a page of items with X-Total-Count and Link headers.
func (c *Context) Paginated(items any, page, size int, total int64) {
	c.status = http.StatusOK
	response.Paginated(c.W, c.R, items, page, size, total)
}

// Error sends a Problem with the given status and message.
func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Problem{Status: code, Message: message})
}

// BadRequestAlert sends a 400 with failure alert headers for entityName.
func (c *Context) BadRequestAlert(entityName, errorKey, message string) {
	c.status = http.StatusBadRequest
	response.BadRequestAlert(c.W, entityName, errorKey, message)
}

// ValidationError sends a 400 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusBadRequest
	response.ValidationError(c.W, errs)
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// Unauthorized sends a 401.
func (c *Context) Unauthorized() { c.Error(http.StatusUnauthorized, "Unauthorized") }

// Conflict sends a 409 with failure alert headers for entityName.
func (c *Context) Conflict(entityName, message string) {
	c.status = http.StatusConflict
	response.Conflict(c.W, entityName, message)
}

// InternalError sends a 500 without details.
func (c *Context) InternalError() {
	c.status = http.StatusInternalServerError
	response.InternalError(c.W)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
