package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shashiranjanraj/kproduct/app/routes"
	"github.com/shashiranjanraj/kproduct/app/services"
	_ "github.com/shashiranjanraj/kproduct/database/migrations"
	"github.com/shashiranjanraj/kproduct/pkg/database"
	"github.com/shashiranjanraj/kproduct/pkg/migration"
	"github.com/shashiranjanraj/kproduct/pkg/response"
	"github.com/shashiranjanraj/kproduct/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	require.NoError(t, migration.New(db, nil).Run())

	r := router.New()
	routes.RegisterAPI(r, services.New(db, nil, nil))
	return r.Handler()
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func problem(t *testing.T, rec *httptest.ResponseRecorder) response.Problem {
	t.Helper()
	var p response.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), rec.Body.String())
	return p
}

const teeJSON = `{"name":"Tee","price":19.99,"size":"M"}`

func TestCreateProduct(t *testing.T) {
	api := newAPI(t)

	rec := call(t, api, http.MethodPost, "/api/products", teeJSON)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/products/1", rec.Header().Get("Location"))
	assert.Equal(t, "kproductApp.kproductProduct.created", rec.Header().Get("X-kproductApp-alert"))
	assert.Equal(t, "1", rec.Header().Get("X-kproductApp-params"))

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, 19.99, body["price"])
	assert.Equal(t, "M", body["size"])
}

func TestCreateWithIDIsRejected(t *testing.T) {
	api := newAPI(t)

	rec := call(t, api, http.MethodPost, "/api/products", `{"id":5,"name":"Tee","price":19.99,"size":"M"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.idexists", rec.Header().Get("X-kproductApp-error"))
	assert.Equal(t, "kproductProduct", rec.Header().Get("X-kproductApp-params"))
	p := problem(t, rec)
	assert.Equal(t, "idexists", p.ErrorKey)
	assert.Equal(t, "A new product cannot already have an ID", p.Message)

	list := call(t, api, http.MethodGet, "/api/products", "")
	assert.Equal(t, "0", list.Header().Get("X-Total-Count"))
}

func TestCreateValidationAndMalformedBody(t *testing.T) {
	api := newAPI(t)

	rec := call(t, api, http.MethodPost, "/api/products", `{"name":"","price":-1,"size":"XXL"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := problem(t, rec)
	assert.Equal(t, "validation", p.ErrorKey)
	assert.Contains(t, p.Errors, "name")
	assert.Contains(t, p.Errors, "price")
	assert.Contains(t, p.Errors, "size")

	rec = call(t, api, http.MethodPost, "/api/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, api, http.MethodPost, "/api/products", `{"name":"Tee","price":1,"size":"M","productCategory":{"id":42}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, problem(t, rec).Errors, "productCategory")
}

func TestUpdateProduct(t *testing.T) {
	api := newAPI(t)
	require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/products", teeJSON).Code)

	rec := call(t, api, http.MethodPut, "/api/products", `{"id":1,"name":"Tee","price":24.99,"size":"M"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "kproductApp.kproductProduct.updated", rec.Header().Get("X-kproductApp-alert"))
	assert.Equal(t, 24.99, decode(t, rec)["price"])

	rec = call(t, api, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24.99, decode(t, rec)["price"])
}

func TestUpdateWithoutIDOrUnknownID(t *testing.T) {
	api := newAPI(t)

	rec := call(t, api, http.MethodPut, "/api/products", teeJSON)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error.idnull", rec.Header().Get("X-kproductApp-error"))
	assert.Equal(t, "idnull", problem(t, rec).ErrorKey)

	rec = call(t, api, http.MethodPut, "/api/products", `{"id":99,"name":"Tee","price":1,"size":"M"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsIsPaged(t *testing.T) {
	api := newAPI(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/products", teeJSON).Code)
	}

	rec := call(t, api, http.MethodGet, "/api/products?page=0&size=2&sort=id,desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-Total-Count"))
	link := rec.Header().Get("Link")
	assert.Contains(t, link, `page=1&size=2&sort=id%2Cdesc>; rel="next"`)
	assert.Contains(t, link, `rel="last"`)
	assert.NotContains(t, link, `rel="prev"`)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, float64(3), items[0]["id"])

	rec = call(t, api, http.MethodGet, "/api/products?sort=colour", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(t, api, http.MethodGet, "/api/products?page=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProductsHonoursSort(t *testing.T) {
	api := newAPI(t)
	for _, name := range []string{"b", "c", "a"} {
		body := `{"name":"` + name + `","price":19.99,"size":"M"}`
		require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/products", body).Code)
	}

	rec := call(t, api, http.MethodGet, "/api/products?sort=name,desc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	names := make([]any, 0, len(items))
	for _, item := range items {
		names = append(names, item["name"])
	}
	assert.Equal(t, []any{"c", "b", "a"}, names)
}

func TestListProductsFarPastEnd(t *testing.T) {
	api := newAPI(t)
	require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/products", teeJSON).Code)

	for _, page := range []string{"461168601842738791", "9223372036854775807"} {
		rec := call(t, api, http.MethodGet, "/api/products?size=20&page="+page, "")
		require.Equal(t, http.StatusOK, rec.Code, page)
		assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
		assert.JSONEq(t, `[]`, rec.Body.String(), page)
	}
}

func TestListCategoriesIsPlainArray(t *testing.T) {
	api := newAPI(t)
	for _, name := range []string{"Shirts", "Hats"} {
		require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/product-categories", `{"name":"`+name+`"}`).Code)
	}

	rec := call(t, api, http.MethodGet, "/api/product-categories?size=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Total-Count"))
	assert.Empty(t, rec.Header().Get("Link"))

	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)
}

func TestGetMissingAndBadID(t *testing.T) {
	api := newAPI(t)

	assert.Equal(t, http.StatusNotFound, call(t, api, http.MethodGet, "/api/product-orders/12345", "").Code)
	assert.Equal(t, http.StatusBadRequest, call(t, api, http.MethodGet, "/api/product-orders/abc", "").Code)
}

func TestDeleteMissingOrderItem(t *testing.T) {
	api := newAPI(t)

	rec := call(t, api, http.MethodDelete, "/api/order-items/777", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "kproductApp.kproductOrderItem.deleted", rec.Header().Get("X-kproductApp-alert"))
	assert.Equal(t, "777", rec.Header().Get("X-kproductApp-params"))
	assert.Empty(t, rec.Body.String())
}

func TestDeleteReferencedProductConflicts(t *testing.T) {
	api := newAPI(t)
	require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/products", teeJSON).Code)
	require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/product-orders",
		`{"placedDate":"2020-01-01T10:00:00Z","status":"PENDING","code":"A1","customer":"alice"}`).Code)
	rec := call(t, api, http.MethodPost, "/api/order-items",
		`{"quantity":2,"totalPrice":39.98,"status":"AVAILABLE","product":{"id":1},"order":{"id":1}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode(t, rec)
	assert.Equal(t, "Tee", item["product"].(map[string]any)["name"])

	rec = call(t, api, http.MethodDelete, "/api/products/1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error.referenced", rec.Header().Get("X-kproductApp-error"))

	assert.Equal(t, http.StatusNoContent, call(t, api, http.MethodDelete, "/api/order-items/1", "").Code)
	assert.Equal(t, http.StatusNoContent, call(t, api, http.MethodDelete, "/api/products/1", "").Code)
	assert.Equal(t, http.StatusNotFound, call(t, api, http.MethodGet, "/api/products/1", "").Code)
}

func TestDeleteCategoryKeepsProducts(t *testing.T) {
	api := newAPI(t)
	require.Equal(t, http.StatusCreated, call(t, api, http.MethodPost, "/api/product-categories", `{"name":"Shirts"}`).Code)
	rec := call(t, api, http.MethodPost, "/api/products", `{"name":"Tee","price":19.99,"size":"M","productCategory":{"id":1}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Shirts", decode(t, rec)["productCategory"].(map[string]any)["name"])

	assert.Equal(t, http.StatusNoContent, call(t, api, http.MethodDelete, "/api/product-categories/1", "").Code)

	rec = call(t, api, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["productCategory"])
}
