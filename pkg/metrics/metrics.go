// Package metrics provides Prometheus metrics for geocol dataset I/O.
//
// The codecs themselves stay pure; recording happens at the dataset layer
// where rows cross the storage boundary.
//
//	metrics.RowsEncoded.WithLabelValues("mask").Inc()
//	timer := prometheus.NewTimer(metrics.DatasetWriteDuration)
//	defer timer.ObserveDuration()
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsEncoded counts geometry values encoded into columnar records,
	// labeled by codec display name.
	RowsEncoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocol",
		Name:      "rows_encoded_total",
		Help:      "Geometry values encoded into columnar records",
	}, []string{"kind"})

	// RowsDecoded counts columnar records decoded back into geometry
	// values, labeled by codec display name.
	RowsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocol",
		Name:      "rows_decoded_total",
		Help:      "Columnar records decoded into geometry values",
	}, []string{"kind"})

	// DecodeErrors counts decode failures by codec display name.
	DecodeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geocol",
		Name:      "decode_errors_total",
		Help:      "Columnar records that failed to decode",
	}, []string{"kind"})

	// DatasetWriteDuration observes wall time for writing a dataset file.
	DatasetWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geocol",
		Name:      "dataset_write_duration_seconds",
		Help:      "Wall time for writing a dataset file",
		Buckets:   prometheus.DefBuckets,
	})

	// DatasetReadDuration observes wall time for reading a dataset file.
	DatasetReadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geocol",
		Name:      "dataset_read_duration_seconds",
		Help:      "Wall time for reading a dataset file",
		Buckets:   prometheus.DefBuckets,
	})
)
