/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes Prometheus counters and gauges tracking a
// Scheduler's transaction outcomes, registered against a private registry
// so embedding applications control what else shares the /metrics page.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coresync/sntp/sntp"
)

// Collector tracks per-status outcome counts and the most recent clock
// offset observed from a successful transaction.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	lastOffsetSecs  prometheus.Gauge
	serverIndex     prometheus.Gauge
	lastSuccessUnix prometheus.Gauge
}

// NewCollector builds a Collector with a fresh private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sntp",
			Name:      "requests_total",
			Help:      "Total SNTP transactions attempted, labeled by outcome status.",
		}, []string{"status"}),
		lastOffsetSecs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sntp",
			Name:      "last_clock_offset_seconds",
			Help:      "Signed clock offset in seconds from the most recent successful transaction.",
		}),
		serverIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sntp",
			Name:      "current_server_index",
			Help:      "Index into the configured server list the Client will target next.",
		}),
		lastSuccessUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sntp",
			Name:      "last_success_unix_seconds",
			Help:      "UNIX timestamp of the last transaction that set the clock.",
		}),
	}
	c.registry.MustRegister(c.requestsTotal, c.lastOffsetSecs, c.serverIndex, c.lastSuccessUnix)
	return c
}

// Handler returns an http.Handler serving this Collector's registry in the
// Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Observe records the outcome of one Scheduler transaction attempt.
func (c *Collector) Observe(err error, offsetSec int32, unixNow int64) {
	c.requestsTotal.WithLabelValues(sntp.StatusOf(err).String()).Inc()
	if err == nil {
		c.lastOffsetSecs.Set(float64(offsetSec))
		c.lastSuccessUnix.Set(float64(unixNow))
	}
}

// SetServerIndex reports which configured server a Client will target
// next, useful for spotting a fleet stuck cycling through dead servers.
func (c *Collector) SetServerIndex(i int) {
	c.serverIndex.Set(float64(i))
}
