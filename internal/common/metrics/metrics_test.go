package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDispatchesTotal(t *testing.T) {
	before := testutil.ToFloat64(DispatchesTotal.WithLabelValues("GetQuoteIntent", OutcomeOK))
	DispatchesTotal.WithLabelValues("GetQuoteIntent", OutcomeOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(DispatchesTotal.WithLabelValues("GetQuoteIntent", OutcomeOK)))
}

func TestIntentLabel(t *testing.T) {
	assert.Equal(t, "JoinNowIntent", IntentLabel("JoinNowIntent", true))
	assert.Equal(t, "unknown", IntentLabel("SomethingElse", false))
}
