package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Verifications.WithLabelValues("signature_mismatch"))
	Verifications.WithLabelValues("signature_mismatch").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Verifications.WithLabelValues("signature_mismatch")))

	Orders.WithLabelValues("created").Inc()
	InterviewStarts.WithLabelValues("allowed").Inc()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(Orders), 1)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(InterviewStarts), 1)
}
