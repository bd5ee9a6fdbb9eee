// Package metrics exposes Prometheus collectors for tab persistence.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Restore outcomes.
const (
	OutcomeFull             = "full"
	OutcomeURLOnly          = "url_only"
	OutcomeDroppedIncognito = "dropped_incognito"
	OutcomeDiscarded        = "discarded"
	OutcomeDuplicate        = "duplicate"
)

// Write statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Prefetch and slot results.
const (
	PrefetchHit   = "hit"
	PrefetchMiss  = "miss"
	SlotGranted   = "granted"
	SlotReused    = "reused"
	SlotExhausted = "exhausted"
)

// I/O operations.
const (
	OperationLoad          = "load"
	OperationSave          = "save"
	OperationDelete        = "delete"
	OperationMetadataWrite = "metadata_write"
)

// Visibility labels.
const (
	VisibilityNormal    = "normal"
	VisibilityIncognito = "incognito"
)

// Restore metrics
var (
	// TabsRestored counts restored or skipped records by outcome.
	TabsRestored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabsession_tabs_restored_total",
			Help: "Persisted tab records processed by restore, by outcome",
		},
		[]string{"outcome"},
	)

	// PrefetchResults counts how the restore path found the prefetched active tab.
	PrefetchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabsession_prefetch_results_total",
			Help: "Active tab prefetch results as seen by restore (hit/miss)",
		},
		[]string{"result"},
	)

	// CacheEvictions counts tab states pushed out of the in-memory cache.
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabsession_state_cache_evictions_total",
			Help: "Tab states evicted from the prefetch cache before use",
		},
	)

	// OrphanBlobsDeleted counts blobs removed because no window references them.
	OrphanBlobsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabsession_orphan_blobs_deleted_total",
			Help: "Tab state blobs deleted because no metadata references them",
		},
	)
)

// Persistence metrics
var (
	// MetadataWrites counts metadata saves by status (ok/skipped/error).
	MetadataWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabsession_metadata_writes_total",
			Help: "Metadata saves by status; skipped means the bytes were unchanged",
		},
		[]string{"status"},
	)

	// BlobWrites counts tab state blob saves by status.
	BlobWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabsession_blob_writes_total",
			Help: "Tab state blob saves by status",
		},
		[]string{"status"},
	)

	// IODuration tracks persistence latency in seconds.
	IODuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabsession_io_duration_seconds",
			Help:    "Persistence operation duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Window metrics
var (
	// LiveWindows tracks windows currently holding a slot.
	LiveWindows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tabsession_live_windows",
			Help: "Windows currently holding a slot",
		},
	)

	// LiveTabs tracks tabs in the global index by visibility.
	LiveTabs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tabsession_live_tabs",
			Help: "Tabs tracked across all windows, by visibility",
		},
		[]string{"visibility"},
	)

	// SlotRequests counts slot requests by result (granted/reused/exhausted).
	SlotRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabsession_slot_requests_total",
			Help: "Window slot requests by result",
		},
		[]string{"result"},
	)
)

// Visibility returns the label value for a tab's visibility.
func Visibility(incognito bool) string {
	if incognito {
		return VisibilityIncognito
	}
	return VisibilityNormal
}
