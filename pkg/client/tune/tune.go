// Copyright (c) OpenMMLab. All rights reserved.

package tune

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"trainctl/logger"
	"trainctl/pkg/client/utils"
	"trainctl/pkg/tuning"

	"github.com/spf13/cobra"
)

// NewCmdTune creates a cobra command that renders a communication
// tuning profile as environment variables or launcher flags.
func NewCmdTune() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Show communication-library tuning profiles",
		Long: `Render a named tuning profile as the environment variables to set
before training starts, or as MPI launcher passthrough flags for the
job's custom MPI options.

Usage:
  trainctl tune [--profile <name>] [--format env|mpi|json]

Example:
  trainctl submit --mpi --mpi-options "$(trainctl tune --profile large-cluster --format mpi)" ...`,
		Run: func(cmd *cobra.Command, args []string) {
			name := utils.FlagOrConfig(cmd, "profile")
			if name == "" {
				fmt.Printf("Available tuning profiles: %s\n", strings.Join(tuning.Names(), ", "))
				return
			}

			profile, err := tuning.Lookup(name)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			switch format {
			case "env":
				printEnv(profile)
			case "mpi":
				fmt.Println(profile.MPIOptions())
			case "json":
				fmt.Println(logger.ToPrettyJSON(profile))
			default:
				fmt.Printf("Unknown format %q, want env, mpi or json\n", format)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().String("profile", "", "Tuning profile name")
	cmd.Flags().StringVar(&format, "format", "env", "Output format: env, mpi or json")

	return cmd
}

func printEnv(profile tuning.Profile) {
	env := profile.Env()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("export %s=%s\n", k, env[k])
	}
}
