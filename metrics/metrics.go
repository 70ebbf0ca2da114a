// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is a process wide metrics facade. It is a no-op until
// InitializePrometheusMetrics is called.
package metrics

import (
	"net/http"
	"sync"
)

var (
	mu      sync.RWMutex
	current Metrics = noopMetrics{}
)

// Metrics creates meters by name.
type Metrics interface {
	CountVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

func get() Metrics {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// BucketHTTPReqs are request duration buckets in milliseconds.
var BucketHTTPReqs = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

// CountVecMeter is a labelled monotonic counter.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a value that may go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// HistogramVecMeter aggregates labelled observations into buckets.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func CounterVec(name string, labels []string) CountVecMeter { return get().CountVec(name, labels) }

func Gauge(name string) GaugeMeter { return get().Gauge(name) }

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return get().HistogramVec(name, labels, buckets)
}

// HTTPHandler serves the collected metrics. It is nil while metrics are disabled.
func HTTPHandler() http.Handler {
	return get().Handler()
}

// Lazy defers creating a meter until first use, so package level meters bind
// to whichever implementation is active by then.
func Lazy[T any](f func() T) func() T {
	return sync.OnceValue(f)
}

func LazyCounterVec(name string, labels []string) func() CountVecMeter {
	return Lazy(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyGauge(name string) func() GaugeMeter {
	return Lazy(func() GaugeMeter { return Gauge(name) })
}

func LazyHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return Lazy(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
