package services

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for calls to object storage and geocoders.
type Observer interface {
	RecordUpload(duration time.Duration, sizeBytes int64, err error)
	RecordGeocode(provider string, duration time.Duration, err error)
}

// PrometheusObserver exports upload and geocoding metrics to Prometheus.
type PrometheusObserver struct {
	uploadDuration  prometheus.Histogram
	uploadBytes     prometheus.Counter
	geocodeDuration *prometheus.HistogramVec
	operationErrors *prometheus.CounterVec
}

// NewPrometheusObserver registers the collectors on reg (the default
// registerer when nil). Collectors already registered by an earlier call are
// reused.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "listings"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{}
	uploadDuration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_duration_seconds",
		Help:      "Latency of image uploads to object storage.",
		Buckets:   prometheus.DefBuckets,
	}))
	if err != nil {
		return nil, err
	}
	uploadBytes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative payload size successfully uploaded to object storage.",
	}))
	if err != nil {
		return nil, err
	}
	geocodeDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "geocode_duration_seconds",
		Help:      "Latency of geocoding lookups by provider.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"}))
	if err != nil {
		return nil, err
	}
	operationErrors, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_errors_total",
		Help:      "Failed calls to object storage and geocoders.",
	}, []string{"operation"}))
	if err != nil {
		return nil, err
	}

	o.uploadDuration = uploadDuration
	o.uploadBytes = uploadBytes
	o.geocodeDuration = geocodeDuration
	o.operationErrors = operationErrors
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register listings metric: %w", err)
	}
	return c, nil
}

// RecordUpload tracks upload duration, size, and failures.
func (o *PrometheusObserver) RecordUpload(duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.uploadDuration.Observe(duration.Seconds())
	if err != nil {
		o.operationErrors.WithLabelValues("upload").Inc()
		return
	}
	o.uploadBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordGeocode(provider string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.geocodeDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if err != nil {
		o.operationErrors.WithLabelValues("geocode_" + provider).Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordUpload(time.Duration, int64, error) {}

func (nopObserver) RecordGeocode(string, time.Duration, error) {}
