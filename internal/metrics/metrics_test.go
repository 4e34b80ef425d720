package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.JobStarted(models.KindHunt)
	c.UnitProcessed(models.KindHunt, models.UnitSucceeded)
	c.UnitProcessed(models.KindHunt, models.UnitSucceeded)
	c.UnitProcessed(models.KindHunt, models.UnitFailed)
	c.JobFinished(models.KindHunt, models.JobPaused)
	c.ReviewResolved(true)
	c.ReviewResolved(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.jobsStarted.WithLabelValues("hunt")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.unitsTotal.WithLabelValues("hunt", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.unitsTotal.WithLabelValues("hunt", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.jobsFinished.WithLabelValues("hunt", "paused")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.reviewTotal.WithLabelValues("accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.reviewTotal.WithLabelValues("rejected")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.activeRunners))
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector()
	c.JobStarted(models.KindVerification)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "bidhunt_jobs_started_total")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()
	a.JobStarted(models.KindHunt)

	assert.Equal(t, float64(1), testutil.ToFloat64(a.jobsStarted.WithLabelValues("hunt")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.jobsStarted.WithLabelValues("hunt")))
}
