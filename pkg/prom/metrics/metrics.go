// Copyright (c) OpenMMLab. All rights reserved.

package metrics

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"trainctl/logger"
)

var (
	// Submission counter
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trainctl_job_submissions_total",
		Help: "Total number of training job submissions",
	}, []string{"instance_type", "status"})

	// Submission latency histogram
	SubmissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trainctl_job_submission_duration_seconds",
		Help:    "Duration of training job submission calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"instance_type"})

	// Upload volume counters
	UploadedFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trainctl_uploaded_files_total",
		Help: "Total number of files uploaded to object storage",
	})
	UploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trainctl_uploaded_bytes_total",
		Help: "Total bytes uploaded to object storage",
	})
)

// ObserveSubmission records the outcome of one submission call.
func ObserveSubmission(instanceType string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SubmissionsTotal.WithLabelValues(instanceType, status).Inc()
	SubmissionDuration.WithLabelValues(instanceType).Observe(time.Since(start).Seconds())
}

// ObserveUpload records a finished recursive upload.
func ObserveUpload(files int, bytes int64) {
	UploadedFilesTotal.Add(float64(files))
	UploadedBytesTotal.Add(float64(bytes))
}

// PushToGateway pushes all collectors once, before the CLI exits. A
// long-lived push loop makes no sense for a one-shot command.
func PushToGateway(pushgatewayUrl, jobName string) {
	if pushgatewayUrl == "" {
		return
	}

	pusher := push.New(pushgatewayUrl, jobName).
		Collector(SubmissionsTotal).
		Collector(SubmissionDuration).
		Collector(UploadedFilesTotal).
		Collector(UploadedBytesTotal).
		Grouping("instance", getHostname())

	if err := pusher.Push(); err != nil {
		logger.Logger.Error("Error pushing metrics", zap.Error(err))
	}
}

func getHostname() string {
	if hostname, err := os.Hostname(); err == nil {
		return hostname
	}

	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return hostname
	}

	if hostname := os.Getenv("HOST"); hostname != "" {
		return hostname
	}

	if data, err := os.ReadFile("/etc/hostname"); err == nil {
		return string(data)
	}

	return "unknown"
}
