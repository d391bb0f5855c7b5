package metrics

import (
	"testing"
	"time"

	"crawl-mgmt-go/pkg/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()

	require.NotNil(t, requestsTotal)
	require.NotNil(t, requestDurationSeconds)
	require.NotNil(t, crawlsByStatus)
	require.NotNil(t, crawlQueueLength)
}

func TestObserveRequest(t *testing.T) {
	Init()
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("list_crawls", OutcomeSuppressed))

	ObserveRequest("list_crawls", OutcomeSuppressed, 0)
	ObserveRequest("list_crawls", OutcomeSuccess, 20*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("list_crawls", OutcomeSuppressed)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(requestsTotal.WithLabelValues("list_crawls", OutcomeSuccess)), 1.0)
}

func TestObserveStore(t *testing.T) {
	a := models.DefaultCrawl("a")
	a.Status = models.StatusRunning
	a.NumQueue = 7
	b := models.DefaultCrawl("b")

	ObserveStore([]models.Crawl{a, b})

	assert.Equal(t, 1.0, testutil.ToFloat64(crawlsByStatus.WithLabelValues("running")))
	assert.Equal(t, 1.0, testutil.ToFloat64(crawlsByStatus.WithLabelValues("new")))
	assert.Equal(t, 0.0, testutil.ToFloat64(crawlsByStatus.WithLabelValues("done")))
	assert.Equal(t, 7.0, testutil.ToFloat64(crawlQueueLength.WithLabelValues("a")))

	ObserveStore([]models.Crawl{b})
	assert.Equal(t, 0.0, testutil.ToFloat64(crawlsByStatus.WithLabelValues("running")))
	assert.Equal(t, 1, testutil.CollectAndCount(crawlQueueLength))
}
