package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Name     string `json:"name"     validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
}

func TestJSONDecodesAndValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Tee","quantity":0}`))
	var in input
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Tee", in.Name)
	require.NotNil(t, in.Quantity)
	assert.Equal(t, 0, *in.Quantity)
}

func TestJSONReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	var in input
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "quantity")
}

func TestJSONWrongTypeIsFieldError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Tee","quantity":"many"}`))
	var in input
	errs, err := JSON(req, &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "quantity")
}

func TestJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var in input
	errs, err := JSON(req, &in)
	assert.Nil(t, errs)
	assert.ErrorContains(t, err, "invalid JSON")
}
