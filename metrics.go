package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal is a Prometheus counter vector that tracks the total number of HTTP requests.
// It is partitioned by the request's URL path, HTTP method, and the resulting status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weatherapp_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// jobRunsTotal counts completed scheduler job runs by outcome.
var jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weatherapp_job_runs_total",
	Help: "Total number of scheduler job runs by job and outcome.",
}, []string{"job", "outcome"})

// jobSkipsTotal counts cron ticks skipped because the previous run of the
// same job was still in progress.
var jobSkipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weatherapp_job_skips_total",
	Help: "Total number of job ticks skipped due to an in-progress run.",
}, []string{"job"})

// providerRequestDuration observes the latency of outbound requests to the
// weather provider, partitioned by host.
var providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "weatherapp_provider_request_duration_seconds",
	Help:    "Duration of outbound weather provider requests in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"host"})

// jobDurationSeconds observes how long each job run took.
var jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "weatherapp_job_duration_seconds",
	Help:    "Duration of scheduler job runs in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"job"})
