// Copyright (c) OpenMMLab. All rights reserved.

package submit

import (
	"context"
	"fmt"
	"os"
	"time"

	"trainctl/logger"
	"trainctl/pkg/client/utils"
	"trainctl/pkg/prom/metrics"
	"trainctl/pkg/storage"
	"trainctl/pkg/trainjob"
	"trainctl/pkg/tuning"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCmdSubmit creates a cobra command that builds a training job
// configuration and submits it to the managed training service.
func NewCmdSubmit() *cobra.Command {
	var (
		hyperparameters  []string
		channels         []string
		instanceCount    int
		volumeSize       int
		processesPerHost int
		maxRuntime       time.Duration
		pollInterval     time.Duration
		mpi              bool
		wait             bool
		dryRun           bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Configure and submit a training job",
		Long: `Build a training job configuration from flags and the configuration
file, package the source directory, and submit the job. Submission is
fire-and-forget unless --wait is given; the remote service owns the job
from then on.

Usage:
  trainctl submit --entry-point <script> --channel <name>=<s3 uri> [parameters]

Example:
  trainctl submit --base-job-name mask-rcnn --entry-point train.py --source-dir ./src \
    --instance-type ml.p3.16xlarge --instance-count 4 --mpi --processes-per-host 8 \
    --tuning-profile large-cluster \
    --channel train=s3://my-bucket/coco/train2017 \
    --channel annotations=s3://my-bucket/coco/annotations \
    -H epochs=24 -H batch-size=4 -H lr=0.01`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := buildConfig(cmd, hyperparameters, channels,
				instanceCount, volumeSize, processesPerHost, maxRuntime, mpi)
			if err != nil {
				fmt.Printf("Invalid job configuration: %v\n", err)
				os.Exit(1)
			}

			ctx := context.Background()

			if dryRun {
				// Render through the full pipeline so the dry run shows
				// exactly what would be submitted.
				input, err := cfg.Render(trainjob.UniqueJobName(cfg.BaseJobName))
				if err != nil {
					fmt.Printf("Invalid job configuration: %v\n", err)
					os.Exit(1)
				}
				fmt.Println(logger.ToPrettyJSON(input))
				return
			}

			sess, err := utils.NewSession(utils.FlagOrConfig(cmd, "region"))
			if err != nil {
				fmt.Printf("Failed to open AWS session: %v\n", err)
				os.Exit(1)
			}

			// The source bundle must be in place before the create call
			// references it.
			if cfg.SourceDir != "" {
				bucket := utils.FlagOrConfig(cmd, "bucket")
				if bucket == "" {
					fmt.Println("Error: --source-dir requires a bucket for the source bundle")
					os.Exit(1)
				}
				up := storage.NewUploader(sess)
				uri, err := up.UploadSourceBundle(ctx, cfg.SourceDir, bucket, "jobs/"+cfg.BaseJobName+"/source")
				if err != nil {
					fmt.Printf("Failed to upload source bundle: %v\n", err)
					os.Exit(1)
				}
				cfg.SubmitDirectory = uri
				fmt.Printf("Source bundle uploaded to %s\n", uri)
			}

			sub := trainjob.NewSubmitter(sess)

			start := time.Now()
			job, err := sub.Submit(ctx, cfg)
			metrics.ObserveSubmission(cfg.InstanceType, start, err)
			metrics.PushToGateway(utils.FlagOrConfig(cmd, "push-gateway"), "trainctl")
			if err != nil {
				fmt.Printf("Failed to submit training job: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Submitted training job %s\n", job.Name)
			fmt.Printf("  - ARN: %s\n", job.ARN)
			fmt.Printf("Model artifacts will appear under %s after the service archives %s\n",
				cfg.OutputPath, trainjob.ModelOutputDir)

			if !wait {
				fmt.Println("Not waiting for completion; check progress with: trainctl status --job-name", job.Name)
				return
			}

			final, err := sub.Wait(ctx, job.Name, pollInterval)
			if err != nil {
				fmt.Printf("Training job did not complete: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Training job %s completed\n", final.Name)
			if final.ArtifactsURI != "" {
				fmt.Printf("  - Artifacts: %s\n", final.ArtifactsURI)
			}
		},
	}

	cmd.Flags().String("base-job-name", "", "Human-readable job name prefix")
	cmd.Flags().String("entry-point", "", "Training script to run inside the container")
	cmd.Flags().String("source-dir", "", "Local directory with the entry point; packaged and uploaded before submission")
	cmd.Flags().String("image", "", "Training container image URI")
	cmd.Flags().String("framework", "", "Framework of the stock container image (mxnet, pytorch, tensorflow)")
	cmd.Flags().String("framework-version", "", "Framework version used to pick a stock container image")
	cmd.Flags().String("role", "", "Execution role ARN the job runs as")
	cmd.Flags().String("instance-type", "", "Accelerator-equipped instance type (e.g. ml.p3.16xlarge)")
	cmd.Flags().IntVar(&instanceCount, "instance-count", 0, "Number of training instances")
	cmd.Flags().IntVar(&volumeSize, "volume-size", 0, "Attached volume size in GB")
	cmd.Flags().DurationVar(&maxRuntime, "max-runtime", 0, "Maximum training time before the service stops the job")
	cmd.Flags().String("output-path", "", "S3 location for archived model artifacts")
	cmd.Flags().StringArrayVar(&channels, "channel", nil, "Input data channel as name=s3://... (repeatable)")
	cmd.Flags().StringArrayVarP(&hyperparameters, "hyperparameter", "H", nil, "Hyperparameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&mpi, "mpi", false, "Enable the MPI-based distributed launch mode")
	cmd.Flags().IntVar(&processesPerHost, "processes-per-host", 0, "Training processes per host when --mpi is set")
	cmd.Flags().String("mpi-options", "", "Extra launcher flags passed through to the MPI run")
	cmd.Flags().String("tuning-profile", "", "Named communication-tuning profile (see: trainctl tune)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the job reaches a terminal status")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 30*time.Second, "Status poll interval with --wait")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rendered request instead of submitting")

	return cmd
}

// buildConfig assembles the job configuration record from flags, with
// configuration-file fallbacks for everything not given on the command
// line.
func buildConfig(cmd *cobra.Command, hyperparameters, channels []string,
	instanceCount, volumeSize, processesPerHost int, maxRuntime time.Duration, mpi bool) (*trainjob.JobConfig, error) {

	cfg := &trainjob.JobConfig{
		BaseJobName:      utils.FlagOrConfig(cmd, "base-job-name"),
		EntryPoint:       utils.FlagOrConfig(cmd, "entry-point"),
		SourceDir:        utils.FlagOrConfig(cmd, "source-dir"),
		TrainingImage:    utils.FlagOrConfig(cmd, "image"),
		FrameworkVersion: utils.FlagOrConfig(cmd, "framework-version"),
		RoleARN:          utils.FlagOrConfig(cmd, "role"),
		InstanceType:     utils.FlagOrConfig(cmd, "instance-type"),
		InstanceCount:    instanceCount,
		VolumeSizeGB:     volumeSize,
		MaxRuntime:       maxRuntime,
		OutputPath:       utils.FlagOrConfig(cmd, "output-path"),
		Hyperparameters:  map[string]interface{}{},
	}

	if cfg.TrainingImage == "" && cfg.FrameworkVersion != "" {
		framework := utils.FlagOrConfig(cmd, "framework")
		if framework == "" {
			framework = "mxnet"
		}
		image, err := trainjob.ResolveImage(framework, cfg.FrameworkVersion, utils.FlagOrConfig(cmd, "region"))
		if err != nil {
			return nil, err
		}
		cfg.TrainingImage = image
		fmt.Printf("Using stock training image %s\n", image)
	}
	if cfg.BaseJobName == "" {
		cfg.BaseJobName = "training-job"
		fmt.Println("Note: No base job name specified, using default value training-job")
	}
	if cfg.InstanceCount == 0 {
		cfg.InstanceCount = viper.GetInt("instance-count")
		if cfg.InstanceCount == 0 {
			cfg.InstanceCount = 1
			fmt.Println("No instance count specified, using default value 1")
		}
	}
	if cfg.MaxRuntime == 0 {
		cfg.MaxRuntime = viper.GetDuration("max-runtime")
	}
	if cfg.OutputPath == "" {
		if bucket := utils.FlagOrConfig(cmd, "bucket"); bucket != "" {
			cfg.OutputPath = storage.S3URI(bucket, "output")
			fmt.Printf("No output path specified, using %s\n", cfg.OutputPath)
		}
	}

	// Hyperparameters from the configuration file first, command line
	// overrides second.
	for k, v := range viper.GetStringMapString("hyperparameters") {
		cfg.Hyperparameters[k] = utils.ParseScalar(v)
	}
	hp, err := utils.ParseKeyValues(hyperparameters)
	if err != nil {
		return nil, fmt.Errorf("hyperparameter: %w", err)
	}
	for k, v := range hp {
		cfg.Hyperparameters[k] = utils.ParseScalar(v)
	}

	chs, err := utils.ParseKeyValues(channels)
	if err != nil {
		return nil, fmt.Errorf("channel: %w", err)
	}
	for name, uri := range chs {
		cfg.Channels = append(cfg.Channels, trainjob.Channel{Name: name, S3URI: uri})
	}
	if len(cfg.Channels) == 0 {
		for name, uri := range viper.GetStringMapString("channels") {
			cfg.Channels = append(cfg.Channels, trainjob.Channel{Name: name, S3URI: uri})
		}
	}

	if mpi || viper.GetBool("mpi") {
		if processesPerHost == 0 {
			processesPerHost = viper.GetInt("processes-per-host")
		}
		cfg.Distribution = &trainjob.Distribution{
			Enabled:          true,
			ProcessesPerHost: processesPerHost,
			CustomMPIOptions: utils.FlagOrConfig(cmd, "mpi-options"),
		}
	}

	if profileName := utils.FlagOrConfig(cmd, "tuning-profile"); profileName != "" {
		profile, err := tuning.Lookup(profileName)
		if err != nil {
			return nil, err
		}
		applyProfile(cfg, profile)
	}

	return cfg, nil
}

// applyProfile folds a tuning profile into the job configuration: env
// vars for the container, passthrough flags for the MPI launcher.
func applyProfile(cfg *trainjob.JobConfig, profile tuning.Profile) {
	if cfg.Environment == nil {
		cfg.Environment = map[string]string{}
	}
	for k, v := range profile.Env() {
		if _, set := cfg.Environment[k]; !set {
			cfg.Environment[k] = v
		}
	}

	if cfg.Distribution != nil && cfg.Distribution.Enabled {
		opts := profile.MPIOptions()
		if cfg.Distribution.CustomMPIOptions != "" {
			opts = cfg.Distribution.CustomMPIOptions + " " + opts
		}
		cfg.Distribution.CustomMPIOptions = opts
	}
}
