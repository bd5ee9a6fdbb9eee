package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounterVecMetrics(t *testing.T) {
	tests := []struct {
		name    string
		metric  *prometheus.CounterVec
		labels  prometheus.Labels
		incBy   int
		wantVal float64
	}{
		{name: "url only restore", metric: TabsRestored, labels: prometheus.Labels{"outcome": OutcomeURLOnly}, incBy: 2, wantVal: 2},
		{name: "prefetch hit", metric: PrefetchResults, labels: prometheus.Labels{"result": PrefetchHit}, incBy: 1, wantVal: 1},
		{name: "metadata skipped", metric: MetadataWrites, labels: prometheus.Labels{"status": StatusSkipped}, incBy: 3, wantVal: 3},
		{name: "blob error", metric: BlobWrites, labels: prometheus.Labels{"status": StatusError}, incBy: 1, wantVal: 1},
		{name: "slot exhausted", metric: SlotRequests, labels: prometheus.Labels{"result": SlotExhausted}, incBy: 4, wantVal: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.metric.Reset()

			for i := 0; i < tt.incBy; i++ {
				tt.metric.With(tt.labels).Inc()
			}

			assert.Equal(t, tt.wantVal, testutil.ToFloat64(tt.metric.With(tt.labels)))
		})
	}
}

func TestGaugeMetrics(t *testing.T) {
	LiveWindows.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(LiveWindows))

	LiveTabs.WithLabelValues(Visibility(false)).Set(12)
	LiveTabs.WithLabelValues(Visibility(true)).Set(2)
	assert.Equal(t, 12.0, testutil.ToFloat64(LiveTabs.WithLabelValues(VisibilityNormal)))
	assert.Equal(t, 2.0, testutil.ToFloat64(LiveTabs.WithLabelValues(VisibilityIncognito)))
}

func TestIODurationHistogram(t *testing.T) {
	IODuration.Reset()
	IODuration.WithLabelValues(OperationLoad).Observe(0.002)
	IODuration.WithLabelValues(OperationLoad).Observe(0.2)

	assert.Equal(t, 1, testutil.CollectAndCount(IODuration))
}
