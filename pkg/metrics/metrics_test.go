package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JaimeStill/sgmr/pkg/metrics"
)

func TestIncrementNotification(t *testing.T) {
	ok := metrics.Notifications.WithLabelValues("verified_reply", metrics.ResultSuccess)
	failed := metrics.Notifications.WithLabelValues("verified_reply", metrics.ResultFailure)
	beforeOK, beforeFailed := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	metrics.IncrementNotification("verified_reply", nil)
	metrics.IncrementNotification("verified_reply", errors.New("smtp down"))
	metrics.IncrementNotification("verified_reply", errors.New("smtp down"))

	if got := testutil.ToFloat64(ok) - beforeOK; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - beforeFailed; got != 2 {
		t.Errorf("failure delta = %v, want 2", got)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.CollectAndCount(metrics.HTTPRequestDuration)
	metrics.ObserveHTTPRequest("PATCH", "418", 5*time.Millisecond)

	if got := testutil.CollectAndCount(metrics.HTTPRequestDuration); got != before+1 {
		t.Errorf("series count = %d, want %d", got, before+1)
	}
}
