// Copyright (c) OpenMMLab. All rights reserved.

package main

import (
	"fmt"
	"os"

	"trainctl/pkg/client"
)

func main() {
	trainctl := client.NewTrainctlCommand()

	if err := trainctl.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
