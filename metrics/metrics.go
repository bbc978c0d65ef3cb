// Package metrics exposes Prometheus instruments for the extraction engine.
//
// Extraction mismatches never raise errors, so the counters here are the
// way to notice markup drift: containers keep being seen while accepted
// products fall towards zero.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Page outcomes for PagesFetched.
const (
	PageOK     = "ok"
	PageEmpty  = "empty"
	PageFailed = "failed"
)

// Description sources for Descriptions.
const (
	DescriptionPrimary  = "primary"
	DescriptionFallback = "fallback"
	DescriptionMissing  = "missing"
	DescriptionFailed   = "failed"
)

var (
	ContainersSeen = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shelfscan",
		Name:      "containers_seen_total",
		Help:      "Result containers found on search pages.",
	})

	ProductsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shelfscan",
		Name:      "products_accepted_total",
		Help:      "Result containers that yielded a complete product.",
	})

	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelfscan",
		Name:      "pages_fetched_total",
		Help:      "Search result pages processed, by outcome.",
	}, []string{"outcome"})

	NavigationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shelfscan",
		Name:      "navigation_failures_total",
		Help:      "Individual navigation attempts that failed, including retried ones.",
	})

	Descriptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelfscan",
		Name:      "descriptions_total",
		Help:      "Description lookups, by which region answered.",
	}, []string{"source"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shelfscan",
		Name:      "browser_sessions_active",
		Help:      "Browser processes currently owned by a search or describe call.",
	})
)
