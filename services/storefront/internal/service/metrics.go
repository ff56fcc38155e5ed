package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_mutations_total",
			Help: "Total number of state changes applied by the storefront stores",
		},
		[]string{"store", "op"},
	)

	storePersistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_store_persist_failures_total",
			Help: "Total number of store snapshots that could not be written to local storage",
		},
		[]string{"store"},
	)
)
