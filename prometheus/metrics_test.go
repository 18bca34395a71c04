package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() {
		InitMetrics(reg)
		InitMetrics(reg)
	})
}

func TestRecorders(t *testing.T) {
	RecordCollectionOperation("users", "create")
	assert.Equal(t, float64(1), testutil.ToFloat64(CollectionOperationsCounter.WithLabelValues("users", "create")))

	RecordCascade("bloqueio", 3)
	assert.Equal(t, float64(1), testutil.ToFloat64(CascadeCounter.WithLabelValues("bloqueio")))

	RecordQuoteInsert("duplicate")
	RecordQuoteInsert("duplicate")
	assert.Equal(t, float64(2), testutil.ToFloat64(QuoteInsertsCounter.WithLabelValues("duplicate")))

	RecordStatusCategory(404, "GET", "/users/:id")
	RecordStatusCategory(302, "GET", "/")
	assert.Equal(t, float64(1), testutil.ToFloat64(StatusCodeCategoryCounter.WithLabelValues("4xx", "GET", "/users/:id")))
	assert.Equal(t, 1, testutil.CollectAndCount(StatusCodeCategoryCounter))

	TrackDBOperation("find")(time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(DbOperationDuration))
}
