// Copyright (c) OpenMMLab. All rights reserved.

package status

import (
	"context"
	"fmt"
	"os"
	"time"

	"trainctl/logger"
	"trainctl/pkg/client/utils"
	"trainctl/pkg/trainjob"

	"github.com/spf13/cobra"
)

// NewCmdStatus creates a cobra command that reports the remote
// service's view of a submitted job.
func NewCmdStatus() *cobra.Command {
	var wait bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Get the status of a submitted training job",
		Long: `Get the status of a submitted training job. Job state lives with the
remote service; this command only reads it.

Usage:
  trainctl status --job-name <name> [--wait]

Example:
  trainctl status --job-name mask-rcnn-20240101-000000-abcd1234 --wait`,
		Run: func(cmd *cobra.Command, args []string) {
			jobName := utils.FlagOrConfig(cmd, "job-name")
			if jobName == "" {
				fmt.Println("Error: Must specify the training job name")
				os.Exit(1)
			}

			sess, err := utils.NewSession(utils.FlagOrConfig(cmd, "region"))
			if err != nil {
				fmt.Printf("Failed to open AWS session: %v\n", err)
				os.Exit(1)
			}
			sub := trainjob.NewSubmitter(sess)

			ctx := context.Background()
			var status *trainjob.JobStatus
			if wait {
				status, err = sub.Wait(ctx, jobName, pollInterval)
			} else {
				status, err = sub.Describe(ctx, jobName)
			}
			if status != nil {
				fmt.Println(logger.ToPrettyJSON(status))
			}
			if err != nil {
				fmt.Printf("Failed to get job status: %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringP("job-name", "j", "", "Training job name returned by submit")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the job reaches a terminal status")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 30*time.Second, "Status poll interval with --wait")

	return cmd
}
