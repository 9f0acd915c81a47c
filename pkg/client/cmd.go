// Copyright (c) OpenMMLab. All rights reserved.

package client

import (
	"fmt"

	"trainctl/pkg/client/dataset"
	"trainctl/pkg/client/status"
	"trainctl/pkg/client/submit"
	"trainctl/pkg/client/tune"
	"trainctl/pkg/client/version"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// readConfig reads parameters from the configuration file
func readConfig(configPath string) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		fmt.Println("Note: User did not specify configuration file path, defaulting to trainctl.yaml in this directory")
		viper.SetConfigName("trainctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Printf("Error reading configuration file: Using default values or user-specified values\n")
	}
}

func NewTrainctlCommand() *cobra.Command {
	// Read configuration file
	var configPath string

	// Create root command
	cmds := &cobra.Command{
		Use:   "trainctl",
		Short: "Command line tool",
		Long: `This is a tool for configuring and submitting distributed training jobs.
Usage:
  trainctl [subcommand] [parameters]

Example:
  trainctl submit --entry-point train.py --instance-type ml.p3.16xlarge --instance-count 4 --mpi`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			readConfig(configPath)
		},
	}

	// Disable auto-completion command
	cmds.CompletionOptions.DisableDefaultCmd = true

	// Add global flags
	cmds.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Specify the path to the configuration file")
	cmds.PersistentFlags().String("region", "", "AWS region of the training service and bucket")
	cmds.PersistentFlags().StringP("bucket", "b", "", "Object storage bucket for datasets, source bundles and outputs")
	cmds.PersistentFlags().String("push-gateway", "", "Pushgateway URL for CLI metrics (e.g., http://localhost:9091)")

	// Add subcommands directly to the root command
	cmds.AddCommand(
		dataset.NewCmdDataset(),
		submit.NewCmdSubmit(),
		status.NewCmdStatus(),
		tune.NewCmdTune(),
		version.NewCmdVersion(),
	)

	return cmds
}
