/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cmdutil resolves a command line flag value, falling back to an
// environment variable, the way every subcommand in this module's CLI
// reads its configuration.
package cmdutil

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// GetUserSetOptionalVarFromString returns a flag's value, or its
// environment variable fallback, or "" if neither was set.
func GetUserSetOptionalVarFromString(cmd *cobra.Command, flagName, envKey string) string {
	if cmd.Flags().Changed(flagName) {
		value, _ := cmd.Flags().GetString(flagName)
		return value
	}

	value, _ := os.LookupEnv(envKey)

	return value
}

// GetUserSetVarFromString is like GetUserSetOptionalVarFromString but
// returns an error if neither the flag nor the environment variable was set.
func GetUserSetVarFromString(cmd *cobra.Command, flagName, envKey string) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf("%s flag not found: %w", flagName, err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)
	if !isSet {
		return "", fmt.Errorf("neither %s (command line flag) nor %s (environment variable) have been set",
			flagName, envKey)
	}

	return value, nil
}

// GetUInt64 returns a flag's value as a uint64, falling back to an
// environment variable and finally to defaultValue.
func GetUInt64(cmd *cobra.Command, flagName, envKey string, defaultValue uint64) (uint64, error) {
	str := GetUserSetOptionalVarFromString(cmd, flagName, envKey)
	if str == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s [%s]: %w", flagName, str, err)
	}

	return value, nil
}
