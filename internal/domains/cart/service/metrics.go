package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_conflict_retries_total",
		Help: "Cart saves that lost the version check and were retried.",
	})

	conflictExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_conflict_exhausted_total",
		Help: "Cart mutations that gave up after the last attempt.",
	})

	syncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_total",
		Help: "Guest cart sync requests by outcome.",
	}, []string{"outcome"})
)
