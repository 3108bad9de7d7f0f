package apicontract_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/lny-platform/product-catalog/api-contract"
)

func TestEmbeddedSpecIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)

	require.NoError(t, doc.Validate(context.Background()))

	assert.Equal(t, "Product Catalog API", doc.Info.Title)

	for _, path := range []string{
		"/api/products",
		"/api/products/{productID}",
		"/api/categories",
		"/api/stats",
		"/api/logs",
		"/api/export/products",
		"/healthz",
	} {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}
