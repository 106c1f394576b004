package prometheus

import (
	"testing"
	"time"

	"timetrack-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackDBOperationObserves(t *testing.T) {
	InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "timetrack_test"}})

	TrackDBOperation("insert")(time.Now())
	TrackDBOperation("query")(time.Now())
	TrackDBOperation("query")(time.Now())

	// One series per operation_type label value.
	if got := testutil.CollectAndCount(DbOperationDuration); got != 2 {
		t.Errorf("expected 2 db operation series, got %d", got)
	}
}
