// Copyright (c) OpenMMLab. All rights reserved.

package trainjob

import (
	"regexp"
	"testing"
)

var legalJobName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)

func TestUniqueJobName(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{"Plain base name", "mask-rcnn"},
		{"Base with illegal characters", "mask_rcnn/coco 2017"},
		{"Empty base falls back to default", ""},
		{"Overlong base is truncated", "a-very-long-experiment-name-that-goes-on-and-on-and-keeps-going-well-past-the-limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueJobName(tt.base)
			if len(got) > maxJobNameLen {
				t.Errorf("UniqueJobName(%q) = %q, longer than %d characters", tt.base, got, maxJobNameLen)
			}
			if !legalJobName.MatchString(got) {
				t.Errorf("UniqueJobName(%q) = %q, contains illegal characters", tt.base, got)
			}
		})
	}
}

func TestUniqueJobNameCollisions(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		name := UniqueJobName("mask-rcnn")
		if _, dup := seen[name]; dup {
			t.Fatalf("UniqueJobName produced duplicate %q", name)
		}
		seen[name] = struct{}{}
	}
}
