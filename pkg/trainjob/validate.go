// Copyright (c) OpenMMLab. All rights reserved.

package trainjob

import (
	"fmt"
	"strings"
)

// Accelerator-equipped instance families accepted for training. The
// remote service stays authoritative for the exact catalog; this only
// catches the CPU-family typos that would otherwise waste a submission
// round trip.
var acceleratorFamilies = []string{"ml.p", "ml.g"}

// Validate checks the local input constraints of a job configuration.
// Anything beyond these (quota, role permissions, bucket existence,
// image availability) is rejected by the remote service, not here.
func (c *JobConfig) Validate() error {
	if c.EntryPoint == "" {
		return fmt.Errorf("entry point is required")
	}
	if c.RoleARN == "" {
		return fmt.Errorf("execution role is required")
	}
	if c.TrainingImage == "" && c.FrameworkVersion == "" {
		return fmt.Errorf("either a training image or a framework version is required")
	}
	if err := validateInstanceType(c.InstanceType); err != nil {
		return err
	}
	if c.InstanceCount < 1 {
		return fmt.Errorf("instance count must be positive, got %d", c.InstanceCount)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("no input data channels configured; upload the dataset and set its location first")
	}
	for _, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel with URI %q has no name", ch.S3URI)
		}
		if !strings.HasPrefix(ch.S3URI, "s3://") {
			return fmt.Errorf("channel %q: data location %q is not an s3:// URI", ch.Name, ch.S3URI)
		}
		switch ch.Distribution {
		case "", DistFullyReplicated, DistShardedByS3Key:
		default:
			return fmt.Errorf("channel %q: unknown distribution mode %q", ch.Name, ch.Distribution)
		}
	}
	for k, v := range c.Hyperparameters {
		if !isPrimitive(v) {
			return fmt.Errorf("hyperparameter %q has non-primitive value of type %T", k, v)
		}
	}
	if c.Distribution != nil && c.Distribution.Enabled {
		if c.Distribution.ProcessesPerHost < 1 {
			return fmt.Errorf("distribution is enabled but processes per host is %d, want >= 1",
				c.Distribution.ProcessesPerHost)
		}
	}
	return nil
}

func validateInstanceType(instanceType string) error {
	if instanceType == "" {
		return fmt.Errorf("instance type is required")
	}
	for _, family := range acceleratorFamilies {
		if strings.HasPrefix(instanceType, family) {
			return nil
		}
	}
	return fmt.Errorf("instance type %q is not an accelerator-equipped training type (want one of the %s families)",
		instanceType, strings.Join(acceleratorFamilies, "*, ")+"*")
}

// Hyperparameter values cross a process boundary as command-line style
// arguments and must stay JSON-serializable scalars.
func isPrimitive(v interface{}) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
