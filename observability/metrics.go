package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulesBuilt counts successfully built schedules.
	SchedulesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amortization_schedules_built_total",
			Help: "Schedules built, by whether the loan carries a balloon payment",
		},
		[]string{"balloon"},
	)

	// BuildErrors counts rejected schedule requests.
	BuildErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amortization_build_errors_total",
			Help: "Schedule requests rejected before or during building",
		},
		[]string{"reason"},
	)

	// SchedulePeriods observes the number of entries per built schedule.
	SchedulePeriods = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "amortization_schedule_periods",
			Help:    "Entries per built schedule",
			Buckets: []float64{1, 3, 6, 12, 24, 36, 60, 120, 240, 360, 600},
		},
	)

	// HTTPRequests counts served requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)
)
