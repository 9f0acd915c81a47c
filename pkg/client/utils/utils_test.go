// Copyright (c) OpenMMLab. All rights reserved.

package utils

import (
	"reflect"
	"testing"
)

// TestParseScalar checks the primitive narrowing used for hyperparameters
func TestParseScalar(t *testing.T) {
	tests := []struct {
		name  string // Test case name
		input string
		want  interface{}
	}{
		{"Boolean true", "true", true},
		{"Boolean false", "false", false},
		{"Integer", "24", 24},
		{"Negative integer", "-3", -3},
		{"Float", "0.01", 0.01},
		{"Scientific notation", "1e-4", 1e-4},
		{"Plain string", "resnet50", "resnet50"},
		{"Numeric-looking string stays float", "3.", 3.0},
		{"Mixed-case bool stays string", "True", "True"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScalar(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseScalar(%q) = %v (%T), want %v (%T)", tt.input, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestParseKeyValues(t *testing.T) {
	got, err := ParseKeyValues([]string{"epochs=24", "lr=0.01", "schedule=8=11"})
	if err != nil {
		t.Fatalf("ParseKeyValues returned error: %v", err)
	}
	want := map[string]string{"epochs": "24", "lr": "0.01", "schedule": "8=11"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseKeyValues = %v, want %v", got, want)
	}

	if _, err := ParseKeyValues([]string{"no-separator"}); err == nil {
		t.Error("ParseKeyValues accepted pair without separator")
	}
	if _, err := ParseKeyValues([]string{"=value"}); err == nil {
		t.Error("ParseKeyValues accepted empty key")
	}
}
