// Copyright (c) OpenMMLab. All rights reserved.

// Package trainjob builds and submits managed training job configurations.
package trainjob

import (
	"time"
)

// Channel data distribution modes supported by the training service.
const (
	DistFullyReplicated = "FullyReplicated"
	DistShardedByS3Key  = "ShardedByS3Key"
)

// ModelOutputDir is the in-container path whose contents the service
// archives and uploads to the job's output location after completion.
const ModelOutputDir = "/opt/ml/model"

// Launcher hyperparameter keys understood by the framework containers.
// The platform SDK passes entry point, source bundle and MPI launch
// settings to the container through these reserved keys.
const (
	hpProgram         = "sagemaker_program"
	hpSubmitDirectory = "sagemaker_submit_directory"
	hpMPIEnabled      = "sagemaker_mpi_enabled"
	hpMPIProcesses    = "sagemaker_mpi_num_of_processes_per_host"
	hpMPIOptions      = "sagemaker_mpi_custom_mpi_options"
)

// Distribution enables the MPI-based collective-communication launch
// mode for a training job.
type Distribution struct {
	Enabled          bool   `json:"enabled"`
	ProcessesPerHost int    `json:"processes_per_host"`
	CustomMPIOptions string `json:"custom_mpi_options,omitempty"`
}

// Channel names an input data location for the job. The URI must point
// at data uploaded before submission.
type Channel struct {
	Name         string `json:"name"`
	S3URI        string `json:"s3_uri"`
	Distribution string `json:"distribution,omitempty"` // defaults to FullyReplicated
}

// JobConfig is the training job configuration record. It is built once
// per run, submitted, and then immutable; job status afterwards lives
// with the remote service, not here.
type JobConfig struct {
	// BaseJobName is the human-readable prefix of the generated job name.
	BaseJobName string `json:"base_job_name"`

	// EntryPoint is the training script inside the source bundle.
	EntryPoint string `json:"entry_point"`
	// SourceDir is the local directory containing the entry point. It is
	// packaged and uploaded before submission; SubmitDirectory is the
	// resulting remote bundle URI.
	SourceDir       string `json:"source_dir,omitempty"`
	SubmitDirectory string `json:"submit_directory,omitempty"`

	TrainingImage    string `json:"training_image"`
	FrameworkVersion string `json:"framework_version,omitempty"`
	RoleARN          string `json:"role_arn"`

	InstanceType  string `json:"instance_type"`
	InstanceCount int    `json:"instance_count"`
	VolumeSizeGB  int    `json:"volume_size_gb"`

	// MaxRuntime bounds total training time; the service stops the job
	// when it elapses.
	MaxRuntime time.Duration `json:"max_runtime"`

	OutputPath string    `json:"output_path"`
	Channels   []Channel `json:"channels"`

	// Hyperparameters cross a process boundary as command-line style
	// arguments, so values must be primitive (string, number, boolean).
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Environment is set in the training container before the entry
	// point starts; tuning knobs for the communication library go here.
	Environment map[string]string `json:"environment,omitempty"`

	Tags map[string]string `json:"tags,omitempty"`

	Distribution *Distribution `json:"distribution,omitempty"`
}

// JobStatus is the remote service's view of a submitted job.
type JobStatus struct {
	Name            string     `json:"name"`
	ARN             string     `json:"arn,omitempty"`
	Status          string     `json:"status"`
	SecondaryStatus string     `json:"secondary_status,omitempty"`
	FailureReason   string     `json:"failure_reason,omitempty"`
	ArtifactsURI    string     `json:"artifacts_uri,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
}
