/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config resolves the protocol parameter table (§3) from command
// line flags or environment variables, for the demo CLI.
package config

import (
	"github.com/spf13/cobra"

	"github.com/jonnycrunch/sidetree-core/internal/cmdutil"
	"github.com/jonnycrunch/sidetree-core/pkg/api/protocol"
	"github.com/jonnycrunch/sidetree-core/pkg/compression"
)

const (
	// NamespaceFlagName is the flag naming the DID method namespace.
	NamespaceFlagName  = "namespace"
	namespaceEnvKey    = "SIDETREE_NAMESPACE"
	defaultNamespace   = "did:sidetree"
	namespaceFlagUsage = "DID method namespace. Alternatively, set " + namespaceEnvKey

	maxOperationSizeFlagName  = "max-operation-size"
	maxOperationSizeEnvKey    = "SIDETREE_MAX_OPERATION_SIZE"
	maxOperationSizeFlagUsage = "Maximum size in bytes of a single operation buffer. Alternatively, set " + maxOperationSizeEnvKey

	maxOperationsPerBatchFlagName  = "max-operations-per-batch"
	maxOperationsPerBatchEnvKey    = "SIDETREE_MAX_OPERATIONS_PER_BATCH"
	maxOperationsPerBatchFlagUsage = "Maximum number of operations per anchored batch. Alternatively, set " + maxOperationsPerBatchEnvKey

	maxBatchFileSizeFlagName  = "max-batch-file-size"
	maxBatchFileSizeEnvKey    = "SIDETREE_MAX_BATCH_FILE_SIZE"
	maxBatchFileSizeFlagUsage = "Maximum size in bytes of a compressed batch file. Alternatively, set " + maxBatchFileSizeEnvKey

	defaultMaxOperationSize      = 2000
	defaultMaxOperationsPerBatch = 10000
	defaultMaxBatchFileSize      = 20000000

	// sha2-256, the only hash algorithm this protocol version defines.
	hashAlgorithmInMultiHashCode = 18
)

// AddFlags registers this package's flags on cmd.
func AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(NamespaceFlagName, "", "", namespaceFlagUsage)
	cmd.Flags().StringP(maxOperationSizeFlagName, "", "", maxOperationSizeFlagUsage)
	cmd.Flags().StringP(maxOperationsPerBatchFlagName, "", "", maxOperationsPerBatchFlagUsage)
	cmd.Flags().StringP(maxBatchFileSizeFlagName, "", "", maxBatchFileSizeFlagUsage)
}

// Protocol resolves the single protocol version in force from cmd's
// flags/environment. This module does not yet support multi-version
// protocol upgrades from the CLI; Registry itself does.
func Protocol(cmd *cobra.Command) (protocol.Protocol, error) {
	maxOperationSize, err := cmdutil.GetUInt64(cmd, maxOperationSizeFlagName, maxOperationSizeEnvKey, defaultMaxOperationSize)
	if err != nil {
		return protocol.Protocol{}, err
	}

	maxOperationsPerBatch, err := cmdutil.GetUInt64(cmd, maxOperationsPerBatchFlagName, maxOperationsPerBatchEnvKey, defaultMaxOperationsPerBatch)
	if err != nil {
		return protocol.Protocol{}, err
	}

	maxBatchFileSize, err := cmdutil.GetUInt64(cmd, maxBatchFileSizeFlagName, maxBatchFileSizeEnvKey, defaultMaxBatchFileSize)
	if err != nil {
		return protocol.Protocol{}, err
	}

	return protocol.Protocol{
		StartTransactionTime:         0,
		HashAlgorithmInMultiHashCode: hashAlgorithmInMultiHashCode,
		MaxOperationSize:             uint(maxOperationSize),
		MaxOperationsPerBatch:        uint(maxOperationsPerBatch),
		MaxBatchFileSize:             uint(maxBatchFileSize),
		CompressionAlgorithm:         compression.Gzip,
	}, nil
}

// Namespace resolves the DID method namespace from cmd's flags/environment.
func Namespace(cmd *cobra.Command) string {
	ns := cmdutil.GetUserSetOptionalVarFromString(cmd, NamespaceFlagName, namespaceEnvKey)
	if ns == "" {
		return defaultNamespace
	}

	return ns
}
