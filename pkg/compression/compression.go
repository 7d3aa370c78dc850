/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package compression implements batch file compression per the
// protocol's compression algorithm registry (§6): a batch file is
// written compressed and read back with the decompression algorithm
// registered under the name the caller supplies.
package compression

import (
	"bytes"
	"compress/gzip"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Gzip is this protocol's only defined compression algorithm.
const Gzip = "GZIP"

// ErrUnsupportedAlgorithm is returned for an algorithm not registered
// with this Provider.
var ErrUnsupportedAlgorithm = errors.New("unsupported compression algorithm")

type algorithm struct {
	compress   func([]byte) ([]byte, error)
	decompress func([]byte) ([]byte, error)
}

// Provider compresses and decompresses batch file content by algorithm
// name, as recorded alongside a batch file's CAS address.
type Provider struct {
	algorithms map[string]algorithm
}

// Option configures a Provider.
type Option func(*Provider)

// WithDefaultAlgorithms registers this protocol's one defined algorithm,
// GZIP. Deployments that need to read batches written under an algorithm
// no longer in the default set can register it with WithAlgorithm.
func WithDefaultAlgorithms() Option {
	return WithAlgorithm(Gzip, gzipCompress, gzipDecompress)
}

// WithAlgorithm registers a named algorithm's compress/decompress pair.
func WithAlgorithm(name string, compress, decompress func([]byte) ([]byte, error)) Option {
	return func(p *Provider) {
		p.algorithms[name] = algorithm{compress: compress, decompress: decompress}
	}
}

// New returns a Provider configured with opts.
func New(opts ...Option) *Provider {
	p := &Provider{algorithms: make(map[string]algorithm)}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Compress compresses data using the named algorithm.
func (p *Provider) Compress(alg string, data []byte) ([]byte, error) {
	a, ok := p.algorithms[alg]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%q", alg)
	}

	return a.compress(data)
}

// Decompress decompresses data using the named algorithm.
func (p *Provider) Decompress(alg string, data []byte) ([]byte, error) {
	a, ok := p.algorithms[alg]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "%q", alg)
	}

	return a.decompress(data)
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ioutil.ReadAll(r)
}
