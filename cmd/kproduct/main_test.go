package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRouteList(t *testing.T) {
	out, err := run(t, "route:list")
	require.NoError(t, err)

	for _, want := range []string{
		"/api/products/{id}", "products.show",
		"/api/product-categories", "product-categories.index",
		"/api/order-items", "order-items.destroy",
		"/graphql", "/health", "/metrics", "/ws/alerts",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTokenIssue(t *testing.T) {
	config.Set("JWT_SECRET", "s3cret")
	t.Cleanup(func() { config.Set("JWT_SECRET", "") })

	out, err := run(t, "token:issue", "--subject", "ops", "--authorities", "ROLE_ADMIN, ROLE_USER", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.Parse([]byte("s3cret"), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.HasAuthority("ROLE_ADMIN"))
	assert.True(t, claims.HasAuthority("ROLE_USER"))
}

func TestTokenIssueWithoutSecret(t *testing.T) {
	config.Set("JWT_SECRET", "")
	_, err := run(t, "token:issue")
	assert.ErrorIs(t, err, auth.ErrNoSecret)
}
