// Copyright (c) OpenMMLab. All rights reserved.

package trainjob

import (
	"fmt"
	"strings"
)

// Registry hosting the stock framework training containers.
const imageAccount = "763104351884"

var knownFrameworks = map[string]bool{
	"mxnet":      true,
	"pytorch":    true,
	"tensorflow": true,
}

// ResolveImage maps a framework name and version to the stock GPU
// training container for a region. Custom images bypass this entirely
// via the TrainingImage field.
func ResolveImage(framework, version, region string) (string, error) {
	framework = strings.ToLower(framework)
	if !knownFrameworks[framework] {
		return "", fmt.Errorf("unknown framework %q, want mxnet, pytorch or tensorflow", framework)
	}
	if version == "" {
		return "", fmt.Errorf("framework version is required to resolve a stock image")
	}
	if region == "" {
		return "", fmt.Errorf("region is required to resolve a stock image")
	}
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com/%s-training:%s-gpu-py3",
		imageAccount, region, framework, version), nil
}
