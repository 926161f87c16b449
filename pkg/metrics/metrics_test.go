package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrIncrementsNamedCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.Incr("txn.begin")
	c.Incr("txn.begin")
	c.Incr("txn.commit")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler(reg).ServeHTTP(rec, req)

	body := rec.Body.String()
	assert.Contains(t, body, `memgraph_operations_total{name="txn.begin"} 2`)
	assert.Contains(t, body, `memgraph_operations_total{name="txn.commit"} 1`)
}

func TestHandlerServesPlaintextExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler(reg).ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Header().Get("Content-Type"), "text/plain"))
}
