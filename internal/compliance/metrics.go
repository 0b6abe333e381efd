package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "compliance_runs_total",
		Help: "Scheduled compliance runs by outcome.",
	}, []string{"outcome"})

	flaggedMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "compliance_flagged_members",
		Help: "Members flagged under target by the last scheduled run.",
	})

	notificationsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "compliance_notifications_emitted_total",
		Help: "Low-lecture notifications created by scheduled runs.",
	})
)
