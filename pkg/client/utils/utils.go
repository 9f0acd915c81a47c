// Copyright (c) OpenMMLab. All rights reserved.

// Package utils provides shared helpers for the trainctl subcommands
package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// FlagOrConfig resolves a string setting from the command line first
// and the configuration file second.
func FlagOrConfig(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		value = viper.GetString(name)
	}
	return value
}

// IntFlagOrConfig resolves an integer setting the same way.
func IntFlagOrConfig(cmd *cobra.Command, name string) int {
	value, _ := cmd.Flags().GetInt(name)
	if value == 0 {
		value = viper.GetInt(name)
	}
	return value
}

// NewSession opens an AWS session using the shared credential chain,
// with an optional explicit region.
func NewSession(region string) (*session.Session, error) {
	opts := session.Options{SharedConfigState: session.SharedConfigEnable}
	if region != "" {
		opts.Config = aws.Config{Region: aws.String(region)}
	}
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("open AWS session: %w", err)
	}
	return sess, nil
}

// ParseScalar converts a command-line hyperparameter value into the
// narrowest primitive type, so numbers and booleans round-trip as such.
func ParseScalar(s string) interface{} {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ParseKeyValues splits repeated key=value flags into a map. The value
// may itself contain '='.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		out[parts[0]] = parts[1]
	}
	return out, nil
}
