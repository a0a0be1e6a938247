package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestMetricsUsesRoutePattern - ids não viram label
func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "404"))
	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "404"))

	assert.Equal(t, 3.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(messagesDispatched.WithLabelValues("read"))
	RecordDispatch("read", 5)
	assert.Equal(t, 5.0, testutil.ToFloat64(messagesDispatched.WithLabelValues("read"))-before)

	before = testutil.ToFloat64(leadTransitions.WithLabelValues("APROVADO"))
	RecordLeadTransition("APROVADO")
	assert.Equal(t, 1.0, testutil.ToFloat64(leadTransitions.WithLabelValues("APROVADO"))-before)
}
