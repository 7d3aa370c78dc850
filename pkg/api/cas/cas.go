/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cas declares the content-addressed storage contract the core
// consumes (§6) to retrieve batch file blobs. CAS itself is an external
// collaborator; this package carries only the interface and its errors.
package cas

import "errors"

// ErrNotFound is returned when no content exists at the requested address.
var ErrNotFound = errors.New("cas: content not found")

// ErrUnavailable is returned when the CAS cannot currently be reached.
var ErrUnavailable = errors.New("cas: unavailable")

// CAS retrieves content-addressed blobs by their address.
type CAS interface {
	Read(address string) ([]byte, error)
}
