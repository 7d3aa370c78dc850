/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package config_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/jonnycrunch/sidetree-core/internal/config"
)

func newCmd(t *testing.T) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.SetArgs([]string{}) // otherwise cobra parses the test binary's own os.Args
	config.AddFlags(cmd)

	return cmd
}

func TestProtocol_Defaults(t *testing.T) {
	cmd := newCmd(t)
	require.NoError(t, cmd.Execute())

	p, err := config.Protocol(cmd)
	require.NoError(t, err)
	require.EqualValues(t, 2000, p.MaxOperationSize)
	require.EqualValues(t, 10000, p.MaxOperationsPerBatch)
	require.EqualValues(t, 18, p.HashAlgorithmInMultiHashCode)
	require.Equal(t, "GZIP", p.CompressionAlgorithm)
}

func TestProtocol_FlagOverride(t *testing.T) {
	cmd := newCmd(t)
	cmd.SetArgs([]string{"--max-operation-size", "5000"})
	require.NoError(t, cmd.Execute())

	p, err := config.Protocol(cmd)
	require.NoError(t, err)
	require.EqualValues(t, 5000, p.MaxOperationSize)
}

func TestProtocol_InvalidFlagValue(t *testing.T) {
	cmd := newCmd(t)
	cmd.SetArgs([]string{"--max-operation-size", "not-a-number"})
	require.NoError(t, cmd.Execute())

	_, err := config.Protocol(cmd)
	require.Error(t, err)
}

func TestNamespace_DefaultAndOverride(t *testing.T) {
	cmd := newCmd(t)
	require.NoError(t, cmd.Execute())
	require.Equal(t, "did:sidetree", config.Namespace(cmd))

	cmd2 := newCmd(t)
	cmd2.SetArgs([]string{"--namespace", "did:example"})
	require.NoError(t, cmd2.Execute())
	require.Equal(t, "did:example", config.Namespace(cmd2))
}
