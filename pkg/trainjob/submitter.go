// Copyright (c) OpenMMLab. All rights reserved.

package trainjob

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
	"go.uber.org/zap"

	"trainctl/logger"
)

// Submitter sends job configurations to the managed training service.
// The create call allocates remote resources and starts billing; it
// returns as soon as the service accepts the request, so submission is
// fire-and-forget unless the caller also invokes Wait.
type Submitter struct {
	API sagemakeriface.SageMakerAPI
}

func NewSubmitter(sess *session.Session) *Submitter {
	return &Submitter{API: sagemaker.New(sess)}
}

// Submit validates, renders and submits the configuration. The returned
// status carries only the identifiers the service handed back; progress
// tracking stays with the remote service.
func (s *Submitter) Submit(ctx context.Context, cfg *JobConfig) (*JobStatus, error) {
	jobName := UniqueJobName(cfg.BaseJobName)
	input, err := cfg.Render(jobName)
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Submitting training job",
		zap.String("job", jobName),
		zap.String("instanceType", cfg.InstanceType),
		zap.Int("instanceCount", cfg.InstanceCount))

	out, err := s.API.CreateTrainingJobWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create training job %q: %w", jobName, err)
	}

	return &JobStatus{
		Name:   jobName,
		ARN:    aws.StringValue(out.TrainingJobArn),
		Status: sagemaker.TrainingJobStatusInProgress,
	}, nil
}

// Describe fetches the remote service's current view of a job.
func (s *Submitter) Describe(ctx context.Context, jobName string) (*JobStatus, error) {
	out, err := s.API.DescribeTrainingJobWithContext(ctx, &sagemaker.DescribeTrainingJobInput{
		TrainingJobName: aws.String(jobName),
	})
	if err != nil {
		return nil, fmt.Errorf("describe training job %q: %w", jobName, err)
	}

	status := &JobStatus{
		Name:            jobName,
		ARN:             aws.StringValue(out.TrainingJobArn),
		Status:          aws.StringValue(out.TrainingJobStatus),
		SecondaryStatus: aws.StringValue(out.SecondaryStatus),
		FailureReason:   aws.StringValue(out.FailureReason),
		StartTime:       out.TrainingStartTime,
		EndTime:         out.TrainingEndTime,
	}
	if out.ModelArtifacts != nil {
		status.ArtifactsURI = aws.StringValue(out.ModelArtifacts.S3ModelArtifacts)
	}
	return status, nil
}

// Wait polls the job until it reaches a terminal status or the context
// is cancelled. A failed job is returned with its status alongside the
// error so callers can show the failure reason.
func (s *Submitter) Wait(ctx context.Context, jobName string, pollInterval time.Duration) (*JobStatus, error) {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := s.Describe(ctx, jobName)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case sagemaker.TrainingJobStatusCompleted:
			return status, nil
		case sagemaker.TrainingJobStatusFailed:
			return status, fmt.Errorf("training job %q failed: %s", jobName, status.FailureReason)
		case sagemaker.TrainingJobStatusStopped:
			return status, fmt.Errorf("training job %q was stopped", jobName)
		}

		logger.Logger.Info("Training job in progress",
			zap.String("job", jobName),
			zap.String("status", status.Status),
			zap.String("secondary", status.SecondaryStatus))

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}
