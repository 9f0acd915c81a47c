// Copyright (c) OpenMMLab. All rights reserved.

package trainjob

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sagemaker"
)

// Render converts a validated configuration into the remote service's
// create-training-job request. jobName must already be unique; the
// caller decides whether to reuse a name or mint one with UniqueJobName.
func (c *JobConfig) Render(jobName string) (*sagemaker.CreateTrainingJobInput, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	hp := map[string]*string{}
	for k, v := range c.Hyperparameters {
		hp[k] = aws.String(formatScalar(v))
	}

	// Launcher settings travel with the hyperparameters so the container
	// entry point can reconstruct the command line.
	hp[hpProgram] = aws.String(strconv.Quote(c.EntryPoint))
	if c.SubmitDirectory != "" {
		hp[hpSubmitDirectory] = aws.String(strconv.Quote(c.SubmitDirectory))
	}
	if c.Distribution != nil && c.Distribution.Enabled {
		hp[hpMPIEnabled] = aws.String("true")
		hp[hpMPIProcesses] = aws.String(strconv.Itoa(c.Distribution.ProcessesPerHost))
		if c.Distribution.CustomMPIOptions != "" {
			hp[hpMPIOptions] = aws.String(strconv.Quote(c.Distribution.CustomMPIOptions))
		}
	}

	channels := make([]*sagemaker.Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		dist := ch.Distribution
		if dist == "" {
			dist = DistFullyReplicated
		}
		channels = append(channels, &sagemaker.Channel{
			ChannelName: aws.String(ch.Name),
			InputMode:   aws.String(sagemaker.TrainingInputModeFile),
			DataSource: &sagemaker.DataSource{
				S3DataSource: &sagemaker.S3DataSource{
					S3DataType:             aws.String(sagemaker.S3DataTypeS3prefix),
					S3Uri:                  aws.String(ch.S3URI),
					S3DataDistributionType: aws.String(dist),
				},
			},
		})
	}
	// Deterministic channel order, independent of flag order.
	sort.Slice(channels, func(i, j int) bool {
		return *channels[i].ChannelName < *channels[j].ChannelName
	})

	image := c.TrainingImage
	if image == "" {
		return nil, fmt.Errorf("no training image resolved for framework version %q", c.FrameworkVersion)
	}

	maxRuntime := c.MaxRuntime
	if maxRuntime <= 0 {
		maxRuntime = 24 * time.Hour
	}
	volumeSize := c.VolumeSizeGB
	if volumeSize <= 0 {
		volumeSize = 30
	}

	input := &sagemaker.CreateTrainingJobInput{
		TrainingJobName: aws.String(jobName),
		RoleArn:         aws.String(c.RoleARN),
		AlgorithmSpecification: &sagemaker.AlgorithmSpecification{
			TrainingImage:     aws.String(image),
			TrainingInputMode: aws.String(sagemaker.TrainingInputModeFile),
		},
		HyperParameters: hp,
		InputDataConfig: channels,
		OutputDataConfig: &sagemaker.OutputDataConfig{
			S3OutputPath: aws.String(c.OutputPath),
		},
		ResourceConfig: &sagemaker.ResourceConfig{
			InstanceType:   aws.String(c.InstanceType),
			InstanceCount:  aws.Int64(int64(c.InstanceCount)),
			VolumeSizeInGB: aws.Int64(int64(volumeSize)),
		},
		StoppingCondition: &sagemaker.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int64(int64(maxRuntime.Seconds())),
		},
	}

	if len(c.Environment) > 0 {
		env := map[string]*string{}
		for k, v := range c.Environment {
			env[k] = aws.String(v)
		}
		input.Environment = env
	}

	if len(c.Tags) > 0 {
		tags := make([]*sagemaker.Tag, 0, len(c.Tags))
		for k, v := range c.Tags {
			tags = append(tags, &sagemaker.Tag{Key: aws.String(k), Value: aws.String(v)})
		}
		sort.Slice(tags, func(i, j int) bool { return *tags[i].Key < *tags[j].Key })
		input.Tags = tags
	}

	return input, nil
}

func formatScalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
