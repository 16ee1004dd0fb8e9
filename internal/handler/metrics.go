package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "caption_pipeline_actions_total",
		Help: "Pipeline proxy actions by action and result.",
	}, []string{"action", "result"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "caption_pipeline_upstream_seconds",
		Help:    "Latency of upstream captioning service calls.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"action"})
)

const (
	resultOK           = "ok"
	resultProcessing   = "processing"
	resultError        = "error"
	resultBadRequest   = "bad_request"
	resultUnauthorized = "unauthorized"
)
