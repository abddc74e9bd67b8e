package ledger

import "github.com/prometheus/client_golang/prometheus"

var callsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "marketd_ledger_calls_total",
		Help: "Ledger contract calls by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.DefaultRegisterer.MustRegister(callsTotal)
}

func observeCall(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	callsTotal.WithLabelValues(op, outcome).Inc()
}
