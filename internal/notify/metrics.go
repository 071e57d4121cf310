package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "folio",
	Name:      "notifications_total",
	Help:      "Workflow notifications by outcome.",
}, []string{"kind", "result"})

const (
	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
	resultSkipped = "skipped"
)
