// Copyright (c) OpenMMLab. All rights reserved.

package submit

import (
	"testing"
	"time"

	"trainctl/pkg/trainjob"
	"trainctl/pkg/tuning"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestBuildConfigFromFlags(t *testing.T) {
	viper.Reset()
	cmd := NewCmdSubmit()
	assert.NoError(t, cmd.Flags().Set("entry-point", "train.py"))
	assert.NoError(t, cmd.Flags().Set("base-job-name", "mask-rcnn"))
	assert.NoError(t, cmd.Flags().Set("role", "arn:aws:iam::123456789012:role/TrainingRole"))
	assert.NoError(t, cmd.Flags().Set("instance-type", "ml.p3.16xlarge"))
	assert.NoError(t, cmd.Flags().Set("image", "mask-rcnn:latest"))
	assert.NoError(t, cmd.Flags().Set("output-path", "s3://my-bucket/output"))

	cfg, err := buildConfig(cmd,
		[]string{"epochs=24", "lr=0.01", "backbone=resnet50"},
		[]string{"train=s3://my-bucket/coco/train2017"},
		4, 100, 8, 6*time.Hour, true)
	assert.NoError(t, err)

	assert.Equal(t, "mask-rcnn", cfg.BaseJobName)
	assert.Equal(t, 4, cfg.InstanceCount)
	assert.Equal(t, 6*time.Hour, cfg.MaxRuntime)
	assert.Equal(t, 24, cfg.Hyperparameters["epochs"])
	assert.Equal(t, 0.01, cfg.Hyperparameters["lr"])
	assert.Equal(t, "resnet50", cfg.Hyperparameters["backbone"])
	assert.Len(t, cfg.Channels, 1)
	assert.Equal(t, "s3://my-bucket/coco/train2017", cfg.Channels[0].S3URI)

	assert.NotNil(t, cfg.Distribution)
	assert.True(t, cfg.Distribution.Enabled)
	assert.Equal(t, 8, cfg.Distribution.ProcessesPerHost)

	// The assembled record must pass the submitter's validation.
	assert.NoError(t, cfg.Validate())
}

func TestBuildConfigConfigFileFallback(t *testing.T) {
	viper.Reset()
	viper.Set("role", "arn:aws:iam::123456789012:role/TrainingRole")
	viper.Set("instance-count", 2)
	viper.Set("hyperparameters", map[string]string{"epochs": "12"})
	viper.Set("channels", map[string]string{"train": "s3://b/coco"})
	defer viper.Reset()

	cmd := NewCmdSubmit()
	assert.NoError(t, cmd.Flags().Set("entry-point", "train.py"))

	cfg, err := buildConfig(cmd, nil, nil, 0, 0, 0, 0, false)
	assert.NoError(t, err)

	assert.Equal(t, "arn:aws:iam::123456789012:role/TrainingRole", cfg.RoleARN)
	assert.Equal(t, 2, cfg.InstanceCount)
	assert.Equal(t, 12, cfg.Hyperparameters["epochs"])
	assert.Len(t, cfg.Channels, 1)
	assert.Nil(t, cfg.Distribution)
}

func TestBuildConfigCommandLineOverridesConfigFile(t *testing.T) {
	viper.Reset()
	viper.Set("hyperparameters", map[string]string{"epochs": "12", "lr": "0.02"})
	defer viper.Reset()

	cmd := NewCmdSubmit()
	cfg, err := buildConfig(cmd, []string{"epochs=24"}, nil, 1, 0, 0, 0, false)
	assert.NoError(t, err)

	assert.Equal(t, 24, cfg.Hyperparameters["epochs"])
	assert.Equal(t, 0.02, cfg.Hyperparameters["lr"])
}

func TestApplyProfile(t *testing.T) {
	cfg := &trainjob.JobConfig{
		Environment: map[string]string{"NCCL_DEBUG": "WARN"},
		Distribution: &trainjob.Distribution{
			Enabled:          true,
			ProcessesPerHost: 8,
			CustomMPIOptions: "--mca btl ^openib",
		},
	}
	profile, err := tuning.Lookup("large-cluster")
	assert.NoError(t, err)

	applyProfile(cfg, profile)

	// User-set environment wins over the profile.
	assert.Equal(t, "WARN", cfg.Environment["NCCL_DEBUG"])
	assert.Equal(t, "1", cfg.Environment["HOROVOD_HIERARCHICAL_ALLREDUCE"])

	// Existing MPI options are preserved ahead of the profile's.
	assert.Contains(t, cfg.Distribution.CustomMPIOptions, "--mca btl ^openib")
	assert.Contains(t, cfg.Distribution.CustomMPIOptions, "-x NCCL_MIN_NRINGS=13")
}

func TestApplyProfileWithoutDistribution(t *testing.T) {
	cfg := &trainjob.JobConfig{}
	profile, _ := tuning.Lookup("default")

	applyProfile(cfg, profile)

	assert.NotEmpty(t, cfg.Environment)
	assert.Nil(t, cfg.Distribution)
}
