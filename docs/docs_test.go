package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	"github.com/jhoicas/stock-ledger/docs"
)

func TestSwagger_RegistradoYValido(t *testing.T) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var spec struct {
		Info  struct{ Title string }
		Paths map[string]json.RawMessage
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))
	assert.Equal(t, "Stock Ledger API", spec.Info.Title)
	for _, p := range []string{"/api/ledger", "/api/{kind}/{id}/validate", "/api/stock/balances/{product_id}/{warehouse_id}"} {
		assert.Contains(t, spec.Paths, p)
	}
}
