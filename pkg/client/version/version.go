// Copyright (c) OpenMMLab. All rights reserved.

package version

import (
	"fmt"

	v "trainctl/pkg/version"

	"github.com/spf13/cobra"
)

func NewCmdVersion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get trainctl version information",
		Long: `Get trainctl version information.
Usage:
  trainctl version`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("The trainctl version information is as follows:")
			fmt.Print(v.GetVersionInfo())
		},
	}
	return cmd
}
