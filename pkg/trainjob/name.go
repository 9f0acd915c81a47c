// Copyright (c) OpenMMLab. All rights reserved.

package trainjob

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// The service limits job names to 63 characters of [A-Za-z0-9-].
const maxJobNameLen = 63

var invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// UniqueJobName derives a service-legal, collision-resistant job name
// from a human-readable base name.
func UniqueJobName(base string) string {
	if base == "" {
		base = "training-job"
	}
	base = invalidNameChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	suffix := "-" + time.Now().UTC().Format("20060102-150405") + "-" + uuid.NewString()[:8]
	if len(base)+len(suffix) > maxJobNameLen {
		base = base[:maxJobNameLen-len(suffix)]
		base = strings.TrimRight(base, "-")
	}
	return base + suffix
}
