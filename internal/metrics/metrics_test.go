package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors_Loads(t *testing.T) {
	c := New()

	c.LoadCompleted("a.csv", 42, 10*time.Millisecond, nil)
	c.LoadCompleted("b.csv", 0, time.Millisecond, errors.New("boom"))
	c.CacheHit("a.csv")
	c.CacheHit("a.csv")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.LoadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LoadsTotal.WithLabelValues("error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.RowsLoaded), "failed load keeps last row count")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheHits))
}

func TestCollectors_Recomputes(t *testing.T) {
	c := New()

	c.RecomputeCompleted(3, time.Millisecond, nil)
	c.RecomputeCompleted(0, time.Millisecond, errors.New("bad range"))
	c.UnknownGender("X")
	c.UnknownGender("unknown; drop table")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.RecomputesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RecomputesTotal.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.UnknownGenders))
	assert.Equal(t, 1, testutil.CollectAndCount(c.UnknownGenders), "label values from the data must not create series")
}

func TestCollectors_Handler(t *testing.T) {
	c := New()
	c.CacheHit("a.csv")

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "customer_dashboard_dataset_cache_hits_total 1"))
}
