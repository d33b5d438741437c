package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks storefront order and download activity.
type StoreMetrics struct {
	ordersCreated     prometheus.Counter
	downloadsAllowed  prometheus.Counter
	downloadsDenied   *prometheus.CounterVec
	downloadBytes     prometheus.Counter
	storageReadErrors prometheus.Counter
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted by the storefront.",
	})
	downloadsAllowed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "downloads_allowed_total",
		Help: "Download requests that were served.",
	})
	downloadsDenied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "downloads_denied_total",
		Help: "Download requests refused, labelled by denial reason.",
	}, []string{"reason"})
	downloadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "download_bytes_total",
		Help: "Total bytes served to customers.",
	})
	storageReadErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storage_read_errors_total",
		Help: "Object store reads that failed before serving a download.",
	})
	reg.MustRegister(ordersCreated, downloadsAllowed, downloadsDenied, downloadBytes, storageReadErrors)
	return &StoreMetrics{
		ordersCreated:     ordersCreated,
		downloadsAllowed:  downloadsAllowed,
		downloadsDenied:   downloadsDenied,
		downloadBytes:     downloadBytes,
		storageReadErrors: storageReadErrors,
	}
}

// IncOrdersCreated bumps the accepted order counter.
func (m *StoreMetrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncDownloadAllowed bumps the served download counter.
func (m *StoreMetrics) IncDownloadAllowed() {
	if m == nil || m.downloadsAllowed == nil {
		return
	}
	m.downloadsAllowed.Inc()
}

// IncDownloadDenied bumps the denial counter for the given reason.
func (m *StoreMetrics) IncDownloadDenied(reason string) {
	if m == nil || m.downloadsDenied == nil {
		return
	}
	m.downloadsDenied.WithLabelValues(normalizeLabel(reason)).Inc()
}

// AddDownloadBytes accumulates bytes served.
func (m *StoreMetrics) AddDownloadBytes(n int64) {
	if m == nil || m.downloadBytes == nil || n <= 0 {
		return
	}
	m.downloadBytes.Add(float64(n))
}

// IncStorageReadError bumps the storage failure counter.
func (m *StoreMetrics) IncStorageReadError() {
	if m == nil || m.storageReadErrors == nil {
		return
	}
	m.storageReadErrors.Inc()
}
