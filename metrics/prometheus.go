// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yashvikram30/staking/log"
)

var logger = log.WithContext("pkg", "metrics")

const namespace = "staking"

// InitializePrometheusMetrics switches the facade to a Prometheus registry.
// Calling it again keeps the existing registry.
func InitializePrometheusMetrics() {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := current.(*prometheusMetrics); !ok {
		current = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	registry *prometheus.Registry
	meters   sync.Map // name -> meter
}

func newPrometheusMetrics() *prometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &prometheusMetrics{registry: reg}
}

// meter returns the meter registered under name, creating it with build on first use.
func meter[T any](o *prometheusMetrics, name string, build func() (prometheus.Collector, T)) T {
	if m, ok := o.meters.Load(name); ok {
		return m.(T)
	}
	collector, m := build()
	actual, loaded := o.meters.LoadOrStore(name, m)
	if loaded {
		return actual.(T)
	}
	if err := o.registry.Register(collector); err != nil {
		logger.Warn("unable to register metric", "name", name, "error", err)
	}
	return m
}

func (o *prometheusMetrics) CountVec(name string, labels []string) CountVecMeter {
	return meter(o, name, func() (prometheus.Collector, CountVecMeter) {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return vec, &promCountVec{vec}
	})
}

func (o *prometheusMetrics) Gauge(name string) GaugeMeter {
	return meter(o, name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, &promGauge{g}
	})
}

func (o *prometheusMetrics) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return meter(o, name, func() (prometheus.Collector, HistogramVecMeter) {
		fb := make([]float64, 0, len(buckets))
		for _, b := range buckets {
			fb = append(fb, float64(b))
		}
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Buckets: fb}, labels)
		return vec, &promHistogramVec{vec}
	})
}

func (o *prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

type promCountVec struct {
	vec *prometheus.CounterVec
}

func (c *promCountVec) AddWithLabel(i int64, labels map[string]string) {
	c.vec.With(labels).Add(float64(i))
}

type promGauge struct {
	gauge prometheus.Gauge
}

func (g *promGauge) Add(i int64) { g.gauge.Add(float64(i)) }
func (g *promGauge) Set(i int64) { g.gauge.Set(float64(i)) }

type promHistogramVec struct {
	vec *prometheus.HistogramVec
}

func (h *promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	h.vec.With(labels).Observe(float64(i))
}
